// File: internal/config/config.go
package config

import (
	"time"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Rules() RulesConfig
	Scan() ScanConfig
	SetScanConfig(sc ScanConfig)
	SetEngineConcurrency(int)
	SetRulesConfig(rc RulesConfig)
}

// Config holds the entire application configuration. It uses private
// fields to enforce access through the Interface's getter methods, the
// way the rest of this pack's CLI tools keep their Viper-populated
// struct from being mutated outside the setter surface.
type Config struct {
	logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	rules  RulesConfig  `mapstructure:"rules" yaml:"rules"`
	// scan gets its marching orders from CLI flags, not the config file.
	scan ScanConfig `mapstructure:"-" yaml:"-"`
}

func (c *Config) Logger() LoggerConfig { return c.logger }
func (c *Config) Engine() EngineConfig { return c.engine }
func (c *Config) Rules() RulesConfig   { return c.rules }
func (c *Config) Scan() ScanConfig     { return c.scan }

func (c *Config) SetScanConfig(sc ScanConfig)     { c.scan = sc }
func (c *Config) SetEngineConcurrency(n int)      { c.engine.Concurrency = n }
func (c *Config) SetRulesConfig(rc RulesConfig)   { c.rules = rc }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig configures the cross-file driver (internal/engine.Driver).
// The pure per-file engine facade itself takes no configuration beyond
// RulesConfig and the activation tier.
type EngineConfig struct {
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout" yaml:"analysis_timeout"`
}

// RulesConfig is the Go realization of spec.md §6's recognized
// configuration options for the engine proper.
type RulesConfig struct {
	QualityEnabled  bool              `mapstructure:"quality" yaml:"quality"`
	SecurityEnabled bool              `mapstructure:"security" yaml:"security"`
	Disabled        []string          `mapstructure:"disabled" yaml:"disabled"`
	Severity        map[string]string `mapstructure:"severity" yaml:"severity"`
	MinSeverity     string            `mapstructure:"min_severity" yaml:"min_severity"`
	MinConfidence   string            `mapstructure:"min_confidence" yaml:"min_confidence"`
	Taint           TaintConfig       `mapstructure:"taint" yaml:"taint"`
}

// TaintConfig carries the configuration-appended source/sink/sanitizer
// patterns spec.md §6 names under security.taint.*.
type TaintConfig struct {
	AdditionalSources    []string `mapstructure:"additional_sources" yaml:"additional_sources"`
	AdditionalSinks      []string `mapstructure:"additional_sinks" yaml:"additional_sinks"`
	AdditionalSanitizers []string `mapstructure:"additional_sanitizers" yaml:"additional_sanitizers"`
}

// ScanConfig holds the CLI-flag-driven parameters of a single `kaizen
// scan` invocation. It is never loaded from a config file.
type ScanConfig struct {
	Include []string
	Exclude []string
	Tier    string
	Format  string
	Output  string
	Watch   bool
}

// fileConfig mirrors Config's shape with exported fields so Viper's
// mapstructure decoder (which never populates unexported fields) has
// somewhere to land the parsed config file and environment overrides.
type fileConfig struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Engine EngineConfig `mapstructure:"engine"`
	Rules  RulesConfig  `mapstructure:"rules"`
}

// fromFile builds a Config from a decoded fileConfig, keeping the
// private-field/getter-method encapsulation the rest of this package
// relies on.
func fromFile(fc fileConfig) *Config {
	return &Config{logger: fc.Logger, engine: fc.Engine, rules: fc.Rules}
}

// Load builds a Config by calling unmarshal (e.g. the Unmarshal method
// of a *viper.Viper that has already read a config file and
// environment variables) to decode over the documented
// defaults, so an absent or partial config file still yields a usable
// Config.
func Load(unmarshal func(interface{}) error) (*Config, error) {
	def := Default()
	fc := fileConfig{Logger: def.logger, Engine: def.engine, Rules: def.rules}
	if err := unmarshal(&fc); err != nil {
		return nil, err
	}
	cfg := fromFile(fc)
	cfg.scan = def.scan
	return cfg, nil
}

// Default returns a Config populated with the engine's documented
// defaults (quality and security categories both enabled, no
// overrides, Hint/Low output floors).
func Default() *Config {
	return &Config{
		logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "kaizen",
			Colors: ColorConfig{
				Debug: "cyan",
				Info:  "green",
				Warn:  "yellow",
				Error: "red",
			},
		},
		engine: EngineConfig{
			Concurrency:     0,
			AnalysisTimeout: 30 * time.Second,
		},
		rules: RulesConfig{
			QualityEnabled:  true,
			SecurityEnabled: true,
			MinSeverity:     "hint",
			MinConfidence:   "low",
		},
	}
}
