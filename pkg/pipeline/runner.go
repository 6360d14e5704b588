package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sotflame/pkg/cache"
	"github.com/matzehuels/sotflame/pkg/observability"
	"github.com/matzehuels/sotflame/pkg/trace"
)

const artifactKeyType = "artifact"

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state. Multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses DefaultKeyer, a nil cache
// disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs parse → layout → render on the raw trace bytes.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{InputHash: cache.Hash(input)}

	// Stage 1: Parse
	parseStart := time.Now()
	t, err := Parse(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = t
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Events = t.Count
	result.Stats.Depth = t.Depth
	result.Stats.Degenerate = trace.Summarize(t).Degenerate

	r.Logger.Info("parsed trace",
		"source", opts.Source,
		"events", t.Count,
		"depth", t.Depth,
		"duration", result.Stats.ParseTime)
	if result.Stats.Degenerate > 0 {
		r.Logger.Warn("events cannot be drawn to scale; they are drawn with zero width",
			"count", result.Stats.Degenerate)
	}

	cacheable := opts.Deterministic()
	var key string
	if cacheable {
		key = r.Keyer.ArtifactKey(result.InputHash, opts.ArtifactKeyOpts())
		if svg, hit := r.lookup(ctx, key, opts.Refresh); hit {
			result.SVG = svg
			result.Stats.Bytes = len(svg)
			result.CacheHit = true
			r.Logger.Info("served from cache", "bytes", len(svg))
			return result, nil
		}
	} else {
		r.Logger.Debug("output not reproducible, skipping cache", "palette", opts.Palette)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, err := ComputeLayout(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"width", l.Width,
		"height", l.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	svg, err := Render(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.SVG = svg
	result.Stats.Bytes = len(svg)
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered svg",
		"bytes", len(svg),
		"duration", result.Stats.RenderTime)

	if cacheable {
		if err := r.Cache.Set(ctx, key, svg, cache.DefaultTTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, artifactKeyType, len(svg))
		}
	}

	return result, nil
}

// lookup reads key from the cache. Read errors count as misses.
func (r *Runner) lookup(ctx context.Context, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, artifactKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, artifactKeyType)
	return data, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
