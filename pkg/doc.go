// Package pkg provides the core libraries for sotflame flame graph rendering.
//
// # Overview
//
// sotflame turns a hierarchical JSON trace of timed events into a static SVG
// flame graph. Every event becomes a box whose width is proportional to its
// duration relative to its parent. The root sits at the bottom and nested
// events stack upward. The document embeds a small script for hover
// details, click to zoom and regex search.
//
// # Architecture
//
// The data flow through sotflame:
//
//	JSON trace
//	     ↓
//	[trace] package (decode + finalize the event tree)
//	     ↓
//	[flame/layout] package (horizontal and vertical placement, colors)
//	     ↓
//	[flame/sink] package (SVG document with embedded script)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/sotflame/pkg/flame/layout"
//	    "github.com/matzehuels/sotflame/pkg/flame/palette"
//	    "github.com/matzehuels/sotflame/pkg/flame/sink"
//	    "github.com/matzehuels/sotflame/pkg/trace"
//	)
//
//	t, _ := trace.Load("trace.json")
//	l := layout.Build(t, layout.WithPalette(palette.Hash{}))
//	svg := sink.RenderSVG(l, sink.WithTitle("Checkout"))
//
// # Main Packages
//
// ## Domain
//
// [trace] - Event model, JSON decoding with a nesting limit, and summaries
// (self time, hottest events).
//
// [flame/layout] - Places frames. Widths scale by parent width over parent
// duration; rows are inverted so the deepest events are drawn at the top.
//
// [flame/palette] - Frame colors: random warm "hot" colors, or colors hashed
// from the event name so a function keeps its color across renders.
//
// [flame/sink] - SVG serialization and the embedded interaction script.
//
// ## Infrastructure
//
// [pipeline] - Parse → layout → render with options validation, hooks and
// an artifact cache. Used by every command.
//
// [cache] - Cache interface with file and null implementations and
// deterministic key builders.
//
// [config] - TOML or YAML config file layered under command-line flags.
//
// [observability] - Pipeline and cache hooks, no-ops by default.
//
// [errors] - Structured errors with machine-readable codes.
//
// [buildinfo] - Version information stamped in at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/flame/...    # Layout, palette and sink
//	go test -run Example       # Examples only
//
// [trace]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/trace
// [flame/layout]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/flame/layout
// [flame/palette]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/flame/palette
// [flame/sink]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/flame/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/sotflame/pkg/buildinfo
package pkg
