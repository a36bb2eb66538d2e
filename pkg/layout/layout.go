package layout

import (
	"fmt"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// Grid is the column/row shape of a layout.
type Grid struct {
	Cols int `json:"cols" toml:"cols"`
	Rows int `json:"rows" toml:"rows"`
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int { return g.Cols * g.Rows }

// Descriptor is an immutable layout: how many photos and in which grid.
type Descriptor struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description,omitempty" toml:"description"`
	PhotoCount  int    `json:"photo_count" toml:"photo_count"`
	Grid        Grid   `json:"grid" toml:"grid"`
}

// Validate checks the descriptor invariants:
// photoCount > 0, cols >= 1, rows >= 1 and cols*rows >= photoCount.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeInvalidLayout, "layout id cannot be empty")
	}
	if d.PhotoCount <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "layout %q: photo count must be positive, got %d", d.ID, d.PhotoCount)
	}
	if d.Grid.Cols < 1 || d.Grid.Rows < 1 {
		return errors.New(errors.ErrCodeInvalidLayout, "layout %q: grid must be at least 1x1, got %dx%d", d.ID, d.Grid.Cols, d.Grid.Rows)
	}
	if d.Grid.Cells() < d.PhotoCount {
		return errors.New(errors.ErrCodeInvalidLayout, "layout %q: %dx%d grid cannot hold %d photos", d.ID, d.Grid.Cols, d.Grid.Rows, d.PhotoCount)
	}
	return nil
}

// IsStrip reports whether the layout is a single vertical column.
func (d Descriptor) IsStrip() bool { return d.Grid.Cols == 1 }

// Position returns the row-major grid position of photo index i:
// col = i mod cols, row = i div cols.
func (d Descriptor) Position(i int) (col, row int) {
	return i % d.Grid.Cols, i / d.Grid.Cols
}

// String returns a compact description such as "4g (4 photos, 2x2)".
func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%d photos, %dx%d)", d.ID, d.PhotoCount, d.Grid.Cols, d.Grid.Rows)
}

// =============================================================================
// Mode
// =============================================================================

// Mode selects between a single framed photo and a multi-photo strip.
type Mode string

const (
	// ModeSingle captures one photo and uses the single-photo composite path.
	ModeSingle Mode = "single"
	// ModeStrip captures layout.PhotoCount photos.
	ModeStrip Mode = "strip"
)

// ParseMode parses a mode name. Unknown names fall back to ModeStrip.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSingle:
		return ModeSingle, true
	case ModeStrip:
		return ModeStrip, true
	}
	return ModeStrip, false
}

// Single is the implicit descriptor used in single mode.
var Single = Descriptor{
	ID:          "single",
	Name:        "1 Photo",
	Description: "Single framed photo",
	PhotoCount:  1,
	Grid:        Grid{Cols: 1, Rows: 1},
}

// ForMode returns the descriptor the sequencer should use for a mode:
// Single in single mode, d otherwise.
func ForMode(m Mode, d Descriptor) Descriptor {
	if m == ModeSingle {
		return Single
	}
	return d
}
