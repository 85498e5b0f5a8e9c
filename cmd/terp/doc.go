// Package main is the terp command line host.
//
// terp boots a sandboxed runtime, waits for it to yield and register its
// project loader, then loads every project named on the command line in
// order.
//
// Lifecycle:
//
//	prepare module → create runtime(mode) → run() → suspend → Load(project)...
//
// Projects are loaded in argument order; globs expand in sorted order. In
// editor mode a project path that does not exist is skipped so the editor
// starts on a new project.
//
// With -metrics set, /metrics and /readyz are served until interrupted.
// /readyz succeeds once the runtime has registered its loader.
//
// Configuration:
//   - Environment variables (12-factor, see internal/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Default runtime with the embedded module
//	./terp scenes/intro.json
//
//	# Print what the runtime writes to its console
//	./terp -console -mode editor scenes/intro.json
//
//	# Player mode; at least one project is required
//	./terp -mode player 'shows/**/*.json.gz'
//
//	# Custom module, development logging, metrics on :9090
//	./terp -module ./build/terp.js -dev -metrics :9090 -mode editor
package main
