package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// FileResult pairs one input file with either its diagnostics or the
// error encountered obtaining/parsing it (a read or parse failure is
// not a rule finding and is reported separately, per spec.md §4.1's
// scope: "input is already a successfully parsed AST").
type FileResult struct {
	Filename    string
	Diagnostics []diagnostic.Diagnostic
	Err         error
}

// Source supplies one file's already-parsed content to the Driver.
// Kept as an interface rather than a concrete discovery type so the
// driver has no opinion on how files are found or read (spec.md §5
// and §1 both scope file discovery/IO out of the engine itself).
type Source interface {
	Filename() string
	Parse(ctx context.Context) (*parsing.ParsedFile, error)
}

// Driver runs Analyze across many files concurrently, bounding
// in-flight work with errgroup.Group.SetLimit the way
// golang.org/x/sync/errgroup is designed for — the teacher's own
// channel+WaitGroup TaskEngine solved the same problem before this
// rewrite; errgroup replaces it with the same bounded-fan-out shape
// using the standard ecosystem primitive for it.
type Driver struct {
	engine     *Engine
	config     config.Interface
	tier       tier.Tier
	concurrency int
}

// NewDriver builds a Driver. concurrency <= 0 means a limit of
// runtime.GOMAXPROCS(0), matching EngineConfig.Concurrency's
// zero-value default.
func NewDriver(eng *Engine, cfg config.Interface, activeTier tier.Tier, concurrency int) *Driver {
	return &Driver{engine: eng, config: cfg, tier: activeTier, concurrency: concurrency}
}

// Run analyzes every source concurrently and returns one FileResult
// per input, in the same order as sources (stable for reproducible
// report ordering regardless of which goroutine finishes first).
func (d *Driver) Run(ctx context.Context, sources []Source) []FileResult {
	results := make([]FileResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	limit := d.concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i].Filename = src.Filename()
			file, err := src.Parse(gctx)
			if err != nil {
				results[i].Err = err
				return nil
			}
			defer file.Close()
			results[i].Diagnostics = Analyze(gctx, d.engine, file, d.config, d.tier)
			return nil
		})
	}
	// Every goroutine above returns nil unconditionally: a per-file
	// parse or analysis failure is recorded on its FileResult, not
	// propagated as a driver-wide error, so one bad file never cancels
	// the rest of the batch.
	_ = g.Wait()
	return results
}
