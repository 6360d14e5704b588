package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sotflame/pkg/observability"
)

// logHooks reports pipeline and cache events as debug log lines. They are
// registered when --verbose is set.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnParseStart(_ context.Context, source string, size int) {
	h.logger.Debug("parse started", "source", source, "bytes", size)
}

func (h *logHooks) OnParseComplete(_ context.Context, source string, events, depth int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("parse finished", "source", source, "events", events, "depth", depth, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, events int) {
	h.logger.Debug("layout started", "events", events)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, degenerate int, d time.Duration, err error) {
	h.logger.Debug("layout finished", "degenerate", degenerate, "duration", d, "err", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render started", "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render finished", "format", format, "bytes", size, "duration", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache write", "type", keyType, "bytes", size)
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
)
