// Package pipeline runs the trace → layout → SVG pipeline for sotflame.
//
// The CLI goes through a [Runner], which adds timing stats, structured
// logging, observability hooks and an artifact cache on top of the three
// stage functions. Each stage can also be run on its own:
//
//	tree, err := pipeline.Parse(ctx, data, opts)
//	l, err := pipeline.ComputeLayout(ctx, tree, opts)
//	svg, err := pipeline.Render(ctx, l, opts)
//
// # Caching
//
// A rendered document is cached only when the output is reproducible: the
// hash palette, or the hot palette with a non-zero seed. The trace is
// parsed on every run so malformed input is reported even when a cached
// document exists.
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sotflame/pkg/cache"
	"github.com/matzehuels/sotflame/pkg/errors"
	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/flame/palette"
	"github.com/matzehuels/sotflame/pkg/trace"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTitle is the heading drawn above the graph.
	DefaultTitle = "Flame Graph"

	// DefaultPalette is the color scheme used when none is configured.
	DefaultPalette = palette.NameHot

	// FormatSVG is the only output format.
	FormatSVG = "svg"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Parse options
	Source   string `json:"source,omitempty"` // input label for logs, usually the path
	MaxDepth int    `json:"max_depth,omitempty"`

	// Layout options
	Geometry layout.Geometry `json:"geometry"`
	Palette  string          `json:"palette,omitempty"`
	Seed     uint64          `json:"seed,omitempty"`

	// Render options
	Title       string `json:"title,omitempty"`
	SearchColor string `json:"search_color,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the parsed trace.
	Tree *trace.Tree

	// Layout is the placed graph. It is nil when SVG came from the cache.
	Layout *layout.Layout

	// SVG is the rendered document.
	SVG []byte

	// InputHash is the SHA-256 of the raw trace bytes.
	InputHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether SVG was served from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Events     int
	Depth      int
	Degenerate int
	Bytes      int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidatePalette checks that a palette name is known.
func ValidatePalette(name string) error {
	switch strings.ToLower(name) {
	case palette.NameHot, palette.NameHash:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (must be %q or %q)", name, palette.NameHot, palette.NameHash)
}

// ValidateGeometry checks that g describes a drawable graph.
func ValidateGeometry(g layout.Geometry) error {
	switch {
	case g.Width <= 0:
		return errors.New(errors.ErrCodeInvalidOptions, "width must be positive, got %g", g.Width)
	case g.SideMargin < 0 || g.TopMargin < 0 || g.BottomMargin < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "margins must not be negative")
	case g.Width <= 2*g.SideMargin:
		return errors.New(errors.ErrCodeInvalidOptions, "width %g leaves no room inside side margins of %g", g.Width, g.SideMargin)
	case g.BoxHeight <= 0:
		return errors.New(errors.ErrCodeInvalidOptions, "box height must be positive, got %g", g.BoxHeight)
	case g.RowSpacing < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "row spacing must not be negative, got %g", g.RowSpacing)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every field.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max depth must not be negative, got %d", o.MaxDepth)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = trace.DefaultMaxDepth
	}
	if o.Geometry == (layout.Geometry{}) {
		o.Geometry = layout.DefaultGeometry()
	}
	if err := ValidateGeometry(o.Geometry); err != nil {
		return err
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	o.Palette = strings.ToLower(o.Palette)
	if err := ValidatePalette(o.Palette); err != nil {
		return err
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Deterministic reports whether two runs with these options render the
// same bytes for the same trace.
func (o *Options) Deterministic() bool {
	return palette.Deterministic(o.Palette, o.Seed)
}

// ArtifactKeyOpts returns cache key options for the rendered document.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      FormatSVG,
		Palette:     o.Palette,
		Seed:        o.Seed,
		Title:       o.Title,
		SearchColor: o.SearchColor,
		Geometry:    o.Geometry,
	}
}
