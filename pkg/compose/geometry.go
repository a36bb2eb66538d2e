package compose

import (
	"image"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
)

// Geometry holds the fixed sizes used to lay out a composite.
type Geometry struct {
	CellWidth       int
	CellHeight      int
	Gap             int
	Padding         int
	BrandingReserve int
	CornerRadius    float64
	BorderWidth     float64
}

// DefaultGeometry is used unless a Compositor is configured otherwise.
var DefaultGeometry = Geometry{
	CellWidth:       400,
	CellHeight:      300,
	Gap:             12,
	Padding:         24,
	BrandingReserve: 40,
	CornerRadius:    8,
	BorderWidth:     1,
}

// Validate checks that every size is usable.
func (g Geometry) Validate() error {
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cell size must be positive, got %dx%d", g.CellWidth, g.CellHeight)
	}
	if g.Gap < 0 || g.Padding < 0 || g.BrandingReserve < 0 || g.CornerRadius < 0 || g.BorderWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gap, padding, branding reserve, radius and border must not be negative")
	}
	return nil
}

// CanvasSize returns the composite size for d.
func (g Geometry) CanvasSize(d layout.Descriptor) (w, h int) {
	if d.Grid.Cols == 1 {
		n := d.PhotoCount
		return g.CellWidth + 2*g.Padding,
			g.CellHeight*n + g.Gap*(n-1) + 2*g.Padding + g.BrandingReserve
	}
	c, r := d.Grid.Cols, d.Grid.Rows
	return g.CellWidth*c + g.Gap*(c-1) + 2*g.Padding,
		g.CellHeight*r + g.Gap*(r-1) + 2*g.Padding + g.BrandingReserve
}

// CellRect returns the cell occupied by photo i.
func (g Geometry) CellRect(d layout.Descriptor, i int) image.Rectangle {
	col, row := GridPosition(d, i)
	x := g.Padding + col*(g.CellWidth+g.Gap)
	y := g.Padding + row*(g.CellHeight+g.Gap)
	return image.Rect(x, y, x+g.CellWidth, y+g.CellHeight)
}

// BrandingCenter returns the vertical center of the branding line: the
// middle of the band between the last row and the bottom edge.
func (g Geometry) BrandingCenter(canvasH int) float64 {
	return float64(canvasH) - float64(g.Padding+g.BrandingReserve)/2
}

// GridPosition returns the row-major position of photo i.
func GridPosition(d layout.Descriptor, i int) (col, row int) {
	return d.Position(i)
}

// CanvasSize returns the composite size for d under DefaultGeometry.
func CanvasSize(d layout.Descriptor) (w, h int) {
	return DefaultGeometry.CanvasSize(d)
}

// CellRect returns the cell for photo i under DefaultGeometry.
func CellRect(d layout.Descriptor, i int) image.Rectangle {
	return DefaultGeometry.CellRect(d, i)
}
