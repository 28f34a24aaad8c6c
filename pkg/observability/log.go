package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnFitStart(_ context.Context, nodeCount, groupCount int) {
	h.logger.Debug("fit start", "nodes", nodeCount, "groups", groupCount)
}

func (h *LogHooks) OnFitComplete(_ context.Context, fittedGroups int, d time.Duration, err error) {
	h.done("fit", d, err, "fitted", fittedGroups)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", d, err, "formats", formats)
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

func (h *LogHooks) OnSave(_ context.Context, backend, id string, d time.Duration, err error) {
	h.done("snapshot save", d, err, "backend", backend, "id", id)
}

func (h *LogHooks) OnLoad(_ context.Context, backend, id string, d time.Duration, err error) {
	h.done("snapshot load", d, err, "backend", backend, "id", id)
}

func (h *LogHooks) OnFallback(_ context.Context, op, primary, secondary string, err error) {
	h.logger.Warn("store fallback", "op", op, "from", primary, "to", secondary, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Microsecond))
}

func (h *LogHooks) done(event string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "elapsed", d.Round(time.Microsecond))
	if err != nil {
		h.logger.Debug(event+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(event+" done", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
