package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/observability"
)

var (
	_ observability.CaptureHooks = (*logHooks)(nil)
	_ observability.ComposeHooks = (*logHooks)(nil)
	_ observability.CacheHooks   = (*logHooks)(nil)
)

func TestLogHooksLevels(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.InfoLevel))
	ctx := context.Background()

	h.OnCountdown(0, 3)
	h.OnCacheHit(ctx, "composite")
	if buf.Len() != 0 {
		t.Errorf("debug events logged at info level: %q", buf.String())
	}

	h.OnCapture(1, "abc", nil)
	if !strings.Contains(buf.String(), "captured") {
		t.Errorf("capture not logged: %q", buf.String())
	}

	buf.Reset()
	h.OnDecorationFailure(ctx, "overlay", "frames/x.svg", errors.New(errors.ErrCodeDecorationLoad, "boom"))
	if out := buf.String(); !strings.Contains(out, "decoration skipped") || !strings.Contains(out, "frames/x.svg") {
		t.Errorf("decoration failure = %q", out)
	}
}
