package semantic

import "strings"

// DisposableConfidence mirrors diagnostic.Confidence without importing
// that package, keeping semantic free of a dependency on the rules
// layer that consumes it.
type DisposableConfidence int

const (
	DisposableHigh DisposableConfidence = iota
	DisposableMedium
)

// DisposableCatalog is the nominal table of fully qualified names and
// heuristic name patterns identifying constructors or factory
// functions whose return value represents a resource requiring scoped
// release (spec.md §3).
type DisposableCatalog struct {
	exact    map[string]bool
	prefixes []string
	suffixes []string
}

// DefaultDisposableCatalog returns the catalog used when no
// configuration additions are supplied. Grounded on common Node.js
// resource-acquisition shapes: file handles, DB clients/connections,
// and locks.
func DefaultDisposableCatalog() *DisposableCatalog {
	return &DisposableCatalog{
		exact: map[string]bool{
			"fs.open":            true,
			"fs.promises.open":   true,
			"net.createConnection": true,
			"net.connect":         true,
			"pool.connect":        true,
			"client.connect":      true,
		},
		prefixes: []string{"open", "acquire", "create"},
		suffixes: []string{"Connection", "Client", "Handle", "Lock", "Session"},
	}
}

// Match reports whether callPath (e.g. ["fs", "open"]) identifies a
// disposable-producing call, and with what confidence: exact catalog
// match is High, heuristic prefix/suffix match is Medium.
func (c *DisposableCatalog) Match(callPath []string) (DisposableConfidence, bool) {
	if len(callPath) == 0 {
		return 0, false
	}
	full := strings.Join(callPath, ".")
	if c.exact[full] {
		return DisposableHigh, true
	}
	name := callPath[len(callPath)-1]
	for _, p := range c.prefixes {
		if strings.HasPrefix(name, p) {
			return DisposableMedium, true
		}
	}
	for _, s := range c.suffixes {
		if strings.HasSuffix(name, s) {
			return DisposableMedium, true
		}
	}
	return 0, false
}
