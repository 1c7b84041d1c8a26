package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l, prefixed with "obs".
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("obs")}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, records int, d time.Duration, err error) {
	h.done("load", err, "source", source, "records", records, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, epochs, nodes int) {
	h.logger.Debug("layout start", "epochs", epochs, "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, curves int, d time.Duration, err error) {
	h.done("layout", err, "curves", curves, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", err, "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, id, method, path string) {
	h.logger.Debug("request", "id", id, "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, id, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "id", id, "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) done(stage string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" complete", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
