package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"

	"github.com/matzehuels/photobooth/pkg/fonts"
)

// Default capture resolution, matching the ideal camera constraints.
const (
	DefaultWidth  = 1280
	DefaultHeight = 960
)

// barColors are SMPTE-style color bars drawn across the top of each frame.
var barColors = []color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

// Pattern is a synthetic camera. It renders deterministic numbered frames,
// which makes it a stand-in for a real device in demos and tests.
type Pattern struct {
	Width  int
	Height int
}

// NewPattern returns a pattern generator for the given frame size. Zero
// values select DefaultWidth x DefaultHeight.
func NewPattern(w, h int) *Pattern {
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	return &Pattern{Width: w, Height: h}
}

// Frame renders frame number seq. The same seq always yields the same pixels.
// The left half carries a marker block so mirrored snapshots are detectable.
func (p *Pattern) Frame(seq uint64) image.Image {
	w, h := float64(p.Width), float64(p.Height)
	dc := gg.NewContext(p.Width, p.Height)

	grad := gg.NewLinearGradient(0, 0, w, h)
	grad.AddColorStop(0, color.RGBA{40, 44, 52, 255})
	grad.AddColorStop(1, color.RGBA{90, 60, 120, 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	barW := w / float64(len(barColors))
	for i, c := range barColors {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barW, 0, barW+1, h/4)
		dc.Fill()
	}

	// Orientation marker: a white block in the lower-left corner.
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, h*0.75, w*0.125, h*0.25)
	dc.Fill()

	if face, err := fonts.Bold(h / 6); err == nil {
		dc.SetFontFace(face)
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(fmt.Sprintf("%03d", seq%1000), w/2, h*0.6, 0.5, 0.5)
	}
	return dc.Image()
}

// Run publishes frames to feed at fps until ctx is done. The feed is closed
// when Run returns.
func (p *Pattern) Run(ctx context.Context, feed *Feed, fps float64) error {
	if fps <= 0 {
		fps = 15
	}
	defer feed.Close()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	var seq uint64
	feed.Publish(p.Frame(seq))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			seq++
			feed.Publish(p.Frame(seq))
		}
	}
}
