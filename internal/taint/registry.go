package taint

import "github.com/kzn-tools/kaizen/internal/config"

// Registry bundles the immutable source/sink/sanitizer catalogs used
// for one engine invocation. The engine builds one per Analyze call
// from that call's configuration and only reads it afterwards.
type Registry struct {
	Sources    []SourcePattern
	Sinks      []SinkPattern
	Sanitizers []SanitizerPattern
}

// NewRegistry builds the default catalog, then appends any
// configuration-supplied patterns with equal standing (defaults then
// additions, per spec.md §4.5).
func NewRegistry(cfg config.TaintConfig) *Registry {
	r := &Registry{
		Sources:    defaultSources(),
		Sinks:      defaultSinks(),
		Sanitizers: defaultSanitizers(),
	}
	for _, p := range cfg.AdditionalSources {
		r.Sources = append(r.Sources, SourcePattern{Path: splitDotted(p), Kind: MatchExact, Category: "", Description: p})
	}
	for _, p := range cfg.AdditionalSinks {
		r.Sinks = append(r.Sinks, SinkPattern{Path: splitDotted(p), Kind: MatchExact, Category: "", Description: p})
	}
	for _, p := range cfg.AdditionalSanitizers {
		r.Sanitizers = append(r.Sanitizers, SanitizerPattern{Path: splitDotted(p), Kind: MatchExact})
	}
	return r
}

func splitDotted(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == '.' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// MatchSource reports the first source pattern that matches a
// property-access or call path by exact, wildcard-suffix, or call
// match; only when none does is the first heuristic (bare-name) match
// reported. Grounded on definitions.go's
// knownPropertySources/knownFunctionSources split.
func (r *Registry) MatchSource(path []string, isCall bool) (SourcePattern, MatchKind, bool) {
	var fallback SourcePattern
	found := false
	for _, p := range r.Sources {
		if p.IsCall != isCall {
			continue
		}
		kind, ok := matchPath(path, p.Path, p.Kind)
		if !ok {
			continue
		}
		if kind != MatchHeuristic {
			return p, kind, true
		}
		if !found {
			fallback, found = p, true
		}
	}
	if found {
		return fallback, MatchHeuristic, true
	}
	return SourcePattern{}, 0, false
}

// MatchSink reports the first matching sink pattern for a call or
// assignment-target path.
func (r *Registry) MatchSink(path []string) (SinkPattern, MatchKind, bool) {
	for _, p := range r.Sinks {
		if kind, ok := matchPath(path, p.Path, p.Kind); ok {
			return p, kind, true
		}
	}
	return SinkPattern{}, 0, false
}

// MatchSanitizer reports the first matching sanitizer for a call
// path and the category it neutralizes. An empty Category on the
// returned pattern means "all categories" (configuration-added
// sanitizers apply broadly since they carry no category hint).
func (r *Registry) MatchSanitizer(path []string) (SanitizerPattern, MatchKind, bool) {
	for _, p := range r.Sanitizers {
		if kind, ok := matchPath(path, p.Path, p.Kind); ok {
			return p, kind, true
		}
	}
	return SanitizerPattern{}, 0, false
}

// defaultSources is grounded on
// internal/analysis/static/javascript/definitions.go's
// knownPropertySources and knownFunctionSources, generalized from
// browser-only DOM sources to also cover the server-side HTTP/env
// sources original_source/crates/lynx-core/src/taint/sources.rs
// registers (req.body/query/params/headers/cookies, process.env).
func defaultSources() []SourcePattern {
	return []SourcePattern{
		// DOM / browser sources.
		{Path: []string{"location", "hash"}, Kind: MatchExact, Category: "", Description: "location.hash"},
		{Path: []string{"location", "search"}, Kind: MatchExact, Category: "", Description: "location.search"},
		{Path: []string{"location", "href"}, Kind: MatchExact, Category: "", Description: "location.href"},
		{Path: []string{"document", "cookie"}, Kind: MatchExact, Category: "", Description: "document.cookie"},
		{Path: []string{"document", "referrer"}, Kind: MatchExact, Category: "", Description: "document.referrer"},
		{Path: []string{"window", "name"}, Kind: MatchExact, Category: "", Description: "window.name"},
		{Path: []string{"localStorage", "getItem"}, Kind: MatchExact, Category: "", Description: "localStorage.getItem", IsCall: true},
		{Path: []string{"sessionStorage", "getItem"}, Kind: MatchExact, Category: "", Description: "sessionStorage.getItem", IsCall: true},

		// HTTP request sources (Express/Koa-shaped handler parameters).
		{Path: []string{"req", "body"}, Kind: MatchWildcardSuffix, Description: "req.body.*"},
		{Path: []string{"req", "query"}, Kind: MatchWildcardSuffix, Description: "req.query.*"},
		{Path: []string{"req", "params"}, Kind: MatchWildcardSuffix, Description: "req.params.*"},
		{Path: []string{"req", "headers"}, Kind: MatchWildcardSuffix, Description: "req.headers.*"},
		{Path: []string{"req", "cookies"}, Kind: MatchWildcardSuffix, Description: "req.cookies.*"},
		{Path: []string{"request", "body"}, Kind: MatchWildcardSuffix, Description: "request.body.*"},
		{Path: []string{"ctx", "request"}, Kind: MatchWildcardSuffix, Description: "ctx.request.*"},
		{Path: []string{"ctx", "query"}, Kind: MatchWildcardSuffix, Description: "ctx.query.*"},
		{Path: []string{"ctx", "params"}, Kind: MatchWildcardSuffix, Description: "ctx.params.*"},

		// Environment sources.
		{Path: []string{"process", "env"}, Kind: MatchWildcardSuffix, Description: "process.env.*"},
		{Path: []string{"process", "argv"}, Kind: MatchExact, Description: "process.argv"},
	}
}

// defaultSinks is grounded on definitions.go's knownSinkPropertyPaths
// and knownSinkFunctions, plus the security rule catalog's call
// patterns from
// original_source/crates/kaizen-core/src/rules/security/{sql_injection,command_injection}.rs
// (db.query/execute, pool.query, knex.raw, prisma.$queryRaw, exec,
// execSync, spawn, child_process.exec/spawn).
func defaultSinks() []SinkPattern {
	return []SinkPattern{
		// SQL injection.
		{Path: []string{"db", "query"}, Kind: MatchExact, Category: SqlInjection, TaintedArgs: []int{0}, Description: "db.query(...)"},
		{Path: []string{"db", "execute"}, Kind: MatchExact, Category: SqlInjection, TaintedArgs: []int{0}, Description: "db.execute(...)"},
		{Path: []string{"pool", "query"}, Kind: MatchExact, Category: SqlInjection, TaintedArgs: []int{0}, Description: "pool.query(...)"},
		{Path: []string{"connection", "query"}, Kind: MatchExact, Category: SqlInjection, TaintedArgs: []int{0}, Description: "connection.query(...)"},
		{Path: []string{"knex", "raw"}, Kind: MatchExact, Category: SqlInjection, TaintedArgs: []int{0}, Description: "knex.raw(...)"},
		{Path: []string{"prisma", "$queryRaw"}, Kind: MatchExact, Category: SqlInjection, TaintedArgs: []int{0}, Description: "prisma.$queryRaw(...)"},

		// Command injection.
		{Path: []string{"exec"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "exec(...)"},
		{Path: []string{"execSync"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "execSync(...)"},
		{Path: []string{"spawn"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "spawn(...)"},
		{Path: []string{"spawnSync"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "spawnSync(...)"},
		{Path: []string{"child_process", "exec"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "child_process.exec(...)"},
		{Path: []string{"child_process", "execSync"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "child_process.execSync(...)"},
		{Path: []string{"child_process", "spawn"}, Kind: MatchExact, Category: CommandInjection, TaintedArgs: []int{0}, Description: "child_process.spawn(...)"},

		// Code injection.
		{Path: []string{"eval"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "eval(...)"},
		{Path: []string{"Function"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "new Function(...)"},
		{Path: []string{"setTimeout"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "setTimeout(...)"},
		{Path: []string{"setInterval"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "setInterval(...)"},
		{Path: []string{"vm", "runInNewContext"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "vm.runInNewContext(...)"},
		{Path: []string{"vm", "runInContext"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "vm.runInContext(...)"},
		{Path: []string{"yaml", "load"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "yaml.load(...)"},
		{Path: []string{"node-serialize", "unserialize"}, Kind: MatchExact, Category: CodeInjection, TaintedArgs: []int{0}, Description: "serialize.unserialize(...)"},

		// XSS (DOM injection sinks, property-assignment form).
		{Path: []string{"innerHTML"}, Kind: MatchHeuristic, Category: Xss, Description: "innerHTML ="},
		{Path: []string{"outerHTML"}, Kind: MatchHeuristic, Category: Xss, Description: "outerHTML ="},
		{Path: []string{"document", "write"}, Kind: MatchExact, Category: Xss, TaintedArgs: []int{0}, Description: "document.write(...)"},
		{Path: []string{"document", "writeln"}, Kind: MatchExact, Category: Xss, TaintedArgs: []int{0}, Description: "document.writeln(...)"},

		// Prototype pollution (S020 supplement).
		{Path: []string{"Object", "assign"}, Kind: MatchExact, Category: PrototypePollution, TaintedArgs: []int{1}, Description: "Object.assign(target, source)"},
		{Path: []string{"__proto__"}, Kind: MatchHeuristic, Category: PrototypePollution, Description: "__proto__ ="},
	}
}

// defaultSanitizers is grounded on definitions.go's knownSanitizers,
// extended with command-injection-specific escapers referenced by
// command_injection.rs's tests (shellEscape, shlex.quote).
func defaultSanitizers() []SanitizerPattern {
	return []SanitizerPattern{
		{Path: []string{"encodeURI"}, Kind: MatchExact, Category: ""},
		{Path: []string{"encodeURIComponent"}, Kind: MatchExact, Category: ""},
		{Path: []string{"JSON", "stringify"}, Kind: MatchExact, Category: ""},
		{Path: []string{"parseInt"}, Kind: MatchExact, Category: ""},
		{Path: []string{"parseFloat"}, Kind: MatchExact, Category: ""},
		{Path: []string{"Number"}, Kind: MatchExact, Category: ""},
		{Path: []string{"DOMPurify", "sanitize"}, Kind: MatchExact, Category: Xss},
		{Path: []string{"sanitizeHtml"}, Kind: MatchExact, Category: Xss},
		{Path: []string{"shellEscape"}, Kind: MatchExact, Category: CommandInjection},
		{Path: []string{"shlex", "quote"}, Kind: MatchExact, Category: CommandInjection},
		{Path: []string{"yaml", "safeLoad"}, Kind: MatchExact, Category: CodeInjection},
	}
}
