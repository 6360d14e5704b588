package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/sotflame/pkg/flame/layout"
	"github.com/matzehuels/sotflame/pkg/flame/sink"
	"github.com/matzehuels/sotflame/pkg/observability"
)

// Render serializes l as an SVG document. opts must have been validated.
func Render(ctx context.Context, l *layout.Layout, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, FormatSVG)
	start := time.Now()

	svg := sink.RenderSVG(l,
		sink.WithTitle(opts.Title),
		sink.WithSearchColor(opts.SearchColor),
	)

	hooks.OnRenderComplete(ctx, FormatSVG, len(svg), time.Since(start), nil)
	return svg, nil
}
