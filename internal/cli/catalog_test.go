package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/photobooth/pkg/layout"
)

func TestLayoutTable(t *testing.T) {
	out := layoutTable(layout.Default.All(), "4v")
	for _, d := range layout.Default.All() {
		if !strings.Contains(out, d.ID) {
			t.Errorf("table missing layout %q", d.ID)
		}
	}
	for _, want := range []string{"448x1324", "1272x1012", "●"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestDecorationTables(t *testing.T) {
	out := decorationTables()
	for _, want := range []string{"Filters", "vintage", "Frame colors", "rainbow", "Overlays", "frames/frame-classic.svg", "Stickers", "top-right", "max 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("decorations missing %q", want)
		}
	}
}

func TestThemeLine(t *testing.T) {
	out := themeLine(mustTheme(t, "pink"), true)
	if !strings.Contains(out, "pink") || !strings.Contains(out, iconSuccess) {
		t.Errorf("themeLine = %q", out)
	}
}
