package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/sotflame/pkg/observability"
	"github.com/matzehuels/sotflame/pkg/trace"
)

// Parse decodes a trace document. opts must have been validated.
func Parse(ctx context.Context, data []byte, opts Options) (*trace.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Source, len(data))
	start := time.Now()

	t, err := trace.Parse(data, trace.WithMaxDepth(opts.MaxDepth))

	var events, depth int
	if t != nil {
		events, depth = t.Count, t.Depth
	}
	hooks.OnParseComplete(ctx, opts.Source, events, depth, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return t, nil
}
