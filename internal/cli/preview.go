package cli

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/photobooth/pkg/decor"
)

// upperHalf draws the top pixel in the foreground and the bottom pixel in the
// background, giving two pixel rows per terminal row.
const upperHalf = "▀"

// previewOptions control how a frame is turned into terminal cells.
type previewOptions struct {
	Mirror bool
	Filter decor.Filter
}

// renderHalfBlocks renders img into cols x rows terminal cells, cropped to
// fill. A nil image or a non-positive size renders as blank space.
func renderHalfBlocks(img image.Image, cols, rows int, opts previewOptions) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	if img == nil {
		return blankCells(cols, rows)
	}

	small := imaging.Fill(img, cols, rows*2, imaging.Center, imaging.Box)
	if opts.Mirror {
		small = imaging.FlipH(small)
	}
	if !opts.Filter.IsIdentity() {
		small = opts.Filter.Apply(small)
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := hexOf(small.NRGBAAt(x, 2*y))
			bottom := hexOf(small.NRGBAAt(x, 2*y+1))
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(upperHalf))
		}
	}
	return b.String()
}

func blankCells(cols, rows int) string {
	line := strings.Repeat(" ", cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func hexOf(c color.NRGBA) string {
	cc, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	return cc.Hex()
}

// previewRows returns the terminal rows needed to show a w x h image cols
// cells wide.
func previewRows(cols, w, h int) int {
	if w <= 0 || h <= 0 {
		return 0
	}
	return max(1, (cols*h+w-1)/w/2)
}
