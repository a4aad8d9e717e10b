package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hpcloud/tail"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/engine"
	"github.com/kzn-tools/kaizen/internal/observability"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/reporting"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// newScanCmd creates and configures the `scan` command.
func newScanCmd() *cobra.Command {
	var (
		output      string
		format      string
		tierFlag    string
		concurrency int
		disabled    []string
	)

	scanCmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Analyze JavaScript/TypeScript sources and report diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			scanID := uuid.New().String()
			logger.Info("starting scan", zap.String("scan_id", scanID))

			if output != "" {
				expanded, err := homedir.Expand(output)
				if err != nil {
					return fmt.Errorf("could not resolve output path %q: %w", output, err)
				}
				output = expanded
			}

			cfg := appConfig
			if cfg == nil {
				cfg = config.Default()
			}
			rc := cfg.Rules()
			rc.Disabled = append(rc.Disabled, disabled...)
			cfg.SetRulesConfig(rc)
			cfg.SetScanConfig(config.ScanConfig{
				Include: args,
				Format:  format,
				Output:  output,
				Tier:    tierFlag,
			})
			cfg.SetEngineConcurrency(concurrency)

			activeTier := tier.Parse(tierFlag)

			files, err := discoverSourceFiles(args)
			if err != nil {
				return fmt.Errorf("discovering source files: %w", err)
			}
			logger.Info("discovered source files", zap.Int("count", len(files)))

			eng := engine.New()
			driver := engine.NewDriver(eng, cfg, activeTier, concurrency)

			hasError, err := runScan(ctx, driver, files, format, output, scanID)
			if err != nil {
				return err
			}

			if !watchFlag {
				if hasError {
					return fmt.Errorf("analysis found one or more error-severity diagnostics")
				}
				return nil
			}

			logger.Info("watch mode enabled, re-scanning on file changes")
			rerun := func() {
				if _, err := runScan(ctx, driver, files, format, output, uuid.New().String()); err != nil {
					logger.Warn("watch re-scan failed", zap.Error(err))
				}
			}
			var tails []*tail.Tail
			for _, src := range files {
				t, err := watchForChanges(src.Filename(), rerun)
				if err != nil {
					logger.Warn("could not watch file", zap.String("file", src.Filename()), zap.Error(err))
					continue
				}
				tails = append(tails, t)
			}
			<-ctx.Done()
			for _, t := range tails {
				t.Stop()
				t.Cleanup()
			}
			return nil
		},
	}

	scanCmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	scanCmd.Flags().StringVarP(&format, "format", "f", "pretty", "report format: pretty, json, ndjson, sarif")
	scanCmd.Flags().StringVarP(&tierFlag, "tier", "t", "free", "activation tier: free, pro, enterprise")
	scanCmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "number of files analyzed concurrently (0 = runtime default)")
	scanCmd.Flags().StringSliceVar(&disabled, "disable", nil, "rule IDs to disable for this run")
	scanCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-run the scan whenever a source file changes")

	return scanCmd
}

// runScan parses and analyzes every discovered file through one fresh
// reporter, returning whether any error-severity diagnostic fired.
// Pulled out of scan's RunE so watch mode can call it again per
// change without duplicating the driver/reporter wiring.
func runScan(ctx context.Context, driver *engine.Driver, files []engine.Source, format, output, scanID string) (bool, error) {
	reporter, err := reporting.New(format, output)
	if err != nil {
		return false, fmt.Errorf("initializing reporter: %w", err)
	}

	logger := observability.GetLogger().With(zap.String("scan_id", scanID))
	results := driver.Run(ctx, files)

	hasError := false
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("could not analyze file", zap.String("file", r.Filename), zap.Error(r.Err))
			continue
		}
		logger.Debug("analyzed file", zap.String("file", r.Filename), zap.Int("diagnostics", len(r.Diagnostics)))
		if err := reporter.WriteFile(r.Filename, r.Diagnostics); err != nil {
			return false, fmt.Errorf("writing report for %s: %w", r.Filename, err)
		}
		for _, d := range r.Diagnostics {
			if d.Severity == diagnostic.Error {
				hasError = true
			}
		}
	}
	if err := reporter.Close(); err != nil {
		return false, fmt.Errorf("closing reporter: %w", err)
	}
	return hasError, nil
}

// fileSource adapts one filesystem path into an engine.Source, doing
// the file read and language-dialect detection the engine's own
// ParsedFile contract treats as an out-of-scope collaborator's job
// (spec.md §1).
type fileSource struct {
	path string
}

func (f fileSource) Filename() string { return f.path }

func (f fileSource) Parse(ctx context.Context) (*parsing.ParsedFile, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	lang := parsing.LanguageForExt(filepath.Ext(f.path))
	return parsing.Parse(ctx, f.path, lang, data)
}

var sourceExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
}

// discoverSourceFiles walks each given path (file or directory),
// collecting every recognized JS/TS source file, skipping
// node_modules and dot-directories. Plain filepath.WalkDir is used
// rather than a third-party directory-walking library: no example
// repo in this pack carries one, and the standard library's WalkDir
// already covers this need exactly (see DESIGN.md).
func discoverSourceFiles(paths []string) ([]engine.Source, error) {
	var sources []engine.Source
	seen := map[string]bool{}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !seen[p] {
				seen[p] = true
				sources = append(sources, fileSource{path: p})
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if name == "node_modules" || (len(name) > 1 && name[0] == '.') {
					return filepath.SkipDir
				}
				return nil
			}
			if sourceExtensions[filepath.Ext(path)] && !seen[path] {
				seen[path] = true
				sources = append(sources, fileSource{path: path})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sources, nil
}
