package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/flame/palette"
	"github.com/matzehuels/sotflame/pkg/observability"
	"github.com/matzehuels/sotflame/pkg/trace"
)

// ComputeLayout places every event of t using the configured geometry and
// palette. opts must have been validated.
func ComputeLayout(ctx context.Context, t *trace.Tree, opts Options) (*layout.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pal, err := palette.ByName(opts.Palette, opts.Seed)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, t.Count)
	start := time.Now()

	l := layout.Build(t, layout.WithGeometry(opts.Geometry), layout.WithPalette(pal))

	hooks.OnLayoutComplete(ctx, l.Degenerate, time.Since(start), nil)
	return l, nil
}
