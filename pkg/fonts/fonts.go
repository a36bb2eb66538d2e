// Package fonts provides the font faces used for branding text.
//
// The Go font family ships inside golang.org/x/image, so faces are available
// without touching the filesystem and render identically on every machine,
// which keeps composites byte-for-byte reproducible.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Parsed fonts (computed once on first access).
var (
	regular, bold *truetype.Font
	parseOnce     sync.Once
	parseErr      error
)

func parse() {
	regular, parseErr = truetype.Parse(goregular.TTF)
	if parseErr != nil {
		return
	}
	bold, parseErr = truetype.Parse(gobold.TTF)
}

// Regular returns a new regular-weight face at the given point size.
// Faces are not safe for concurrent use; callers get a fresh face per call.
func Regular(size float64) (font.Face, error) {
	parseOnce.Do(parse)
	if parseErr != nil {
		return nil, parseErr
	}
	return newFace(regular, size), nil
}

// Bold returns a new bold face at the given point size.
func Bold(size float64) (font.Face, error) {
	parseOnce.Do(parse)
	if parseErr != nil {
		return nil, parseErr
	}
	return newFace(bold, size), nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// FontFamily is the family name of the embedded faces.
const FontFamily = "Go"
