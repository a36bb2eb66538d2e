package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// logHooks forwards library events to the CLI logger: countdown ticks and
// cache traffic at debug, captures at info, failures at warn.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnPhase(from, to string) {
	h.logger.Debug("phase", "from", from, "to", to)
}

func (h *logHooks) OnCountdown(slot, remaining int) {
	h.logger.Debug("countdown", "slot", slot+1, "remaining", remaining)
}

func (h *logHooks) OnCapture(slot int, id string, err error) {
	if err != nil {
		h.logger.Warn("capture failed", "slot", slot+1, "err", errors.UserMessage(err))
		return
	}
	h.logger.Info("captured", "slot", slot+1, "id", id)
}

func (h *logHooks) OnReset(reason string, capacity int) {
	h.logger.Debug("slots reset", "reason", reason, "capacity", capacity)
}

func (h *logHooks) OnComposeStart(_ context.Context, layoutID string, photos int) {
	h.logger.Debug("compose", "layout", layoutID, "photos", photos)
}

func (h *logHooks) OnComposeComplete(_ context.Context, layoutID string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("compose failed", "layout", layoutID, "err", err)
		return
	}
	h.logger.Debug("compose done", "layout", layoutID, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnDecorationFailure(_ context.Context, kind, ref string, err error) {
	h.logger.Warn("decoration skipped", "kind", kind, "ref", ref, "err", errors.UserMessage(err))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
