package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/config"
)

func TestLoadAppliesOverridesOverDefaults(t *testing.T) {
	t.Parallel()
	// A no-op unmarshal (standing in for an empty config file) should
	// leave Load's seeded defaults untouched.
	noop := func(v interface{}) error { return nil }
	cfg, err := config.Load(noop)
	require.NoError(t, err)

	assert.True(t, cfg.Rules().QualityEnabled)
	assert.True(t, cfg.Rules().SecurityEnabled)
	assert.Equal(t, "hint", cfg.Rules().MinSeverity)
}

func TestSettersRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := config.Default()

	cfg.SetEngineConcurrency(4)
	assert.Equal(t, 4, cfg.Engine().Concurrency)

	sc := config.ScanConfig{Format: "json", Output: "out.json"}
	cfg.SetScanConfig(sc)
	assert.Equal(t, sc, cfg.Scan())

	rc := cfg.Rules()
	rc.Disabled = []string{"Q001"}
	cfg.SetRulesConfig(rc)
	assert.Equal(t, []string{"Q001"}, cfg.Rules().Disabled)
}
