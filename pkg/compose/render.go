package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photobooth/pkg/buildinfo"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/fonts"
	"github.com/matzehuels/photobooth/pkg/layout"
)

// BrandingFontSize is the point size of the branding line.
const BrandingFontSize = 14

// BrandingDateFormat formats the date in the branding line.
const BrandingDateFormat = "Jan 2, 2006"

var borderColor = color.NRGBA{A: 0x14}

// PlacedSticker is a loaded sticker image and where it goes.
type PlacedSticker struct {
	Image  image.Image
	Anchor decor.Anchor
}

// Input is everything Render draws. Overlay and Stickers hold images that
// were loaded successfully; anything that failed to load is simply absent.
type Input struct {
	Images   []image.Image
	Layout   layout.Descriptor
	Decor    decor.Resolved
	Overlay  image.Image
	Stickers []PlacedSticker
	Date     time.Time
}

// IsSingle reports whether the input takes the single-photo path.
func (in Input) IsSingle() bool { return in.Layout.ID == layout.Single.ID }

// BrandingText returns the line drawn in the branding band.
func BrandingText(date time.Time) string {
	return fmt.Sprintf("%s • %s", buildinfo.ProductName, date.Format(BrandingDateFormat))
}

// Render draws the composite. It performs no I/O and keeps no state; equal
// inputs give equal pixels.
func Render(in Input, g Geometry) (image.Image, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := in.Layout.Validate(); err != nil {
		return nil, err
	}
	if len(in.Images) != in.Layout.PhotoCount {
		return nil, errors.New(errors.ErrCodeIncompleteSlots,
			"layout %q needs %d photos, got %d", in.Layout.ID, in.Layout.PhotoCount, len(in.Images))
	}
	for i, img := range in.Images {
		if img == nil {
			return nil, errors.New(errors.ErrCodeIncompleteSlots, "slot %d is empty", i)
		}
	}

	if len(in.Decor.Fill.Stops) == 0 {
		fill, err := decor.ResolveFill(decor.DefaultFrameColor)
		if err != nil {
			return nil, err
		}
		in.Decor.Fill = fill
	}

	if in.IsSingle() {
		return renderSingle(in), nil
	}
	return renderStrip(in, g)
}

// renderSingle draws the photo at its own size with the overlay and stickers
// on top. There is no frame, border or branding band.
func renderSingle(in Input) image.Image {
	photo := in.Decor.Filter.Apply(in.Images[0])
	b := photo.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(photo, 0, 0)
	drawDecorations(dc, in)
	return dc.Image()
}

func renderStrip(in Input, g Geometry) (image.Image, error) {
	w, h := g.CanvasSize(in.Layout)
	dc := gg.NewContext(w, h)
	in.Decor.Fill.Paint(dc)

	cells, err := prepareCells(in.Images, in.Decor.Filter, g)
	if err != nil {
		return nil, err
	}

	for i, cell := range cells {
		r := g.CellRect(in.Layout, i)
		x, y := float64(r.Min.X), float64(r.Min.Y)
		cw, ch := float64(r.Dx()), float64(r.Dy())

		dc.DrawRoundedRectangle(x, y, cw, ch, g.CornerRadius)
		dc.Clip()
		dc.DrawImage(cell, r.Min.X, r.Min.Y)
		dc.ResetClip()

		if g.BorderWidth > 0 {
			dc.DrawRoundedRectangle(x, y, cw, ch, g.CornerRadius)
			dc.SetColor(borderColor)
			dc.SetLineWidth(g.BorderWidth)
			dc.Stroke()
		}
	}

	drawDecorations(dc, in)

	if err := drawBranding(dc, in, g); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// prepareCells cover-crops every photo to the cell size and applies the
// filter. Each photo is scaled independently, so sources of different sizes
// and aspect ratios are fine.
func prepareCells(images []image.Image, f decor.Filter, g Geometry) ([]*image.NRGBA, error) {
	cells := make([]*image.NRGBA, len(images))
	var eg errgroup.Group
	for i, img := range images {
		eg.Go(func() error {
			cells[i] = f.Apply(imaging.Fill(img, g.CellWidth, g.CellHeight, imaging.Center, imaging.Lanczos))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return cells, nil
}

// drawDecorations draws the overlay stretched over the canvas, then the
// stickers in order.
func drawDecorations(dc *gg.Context, in Input) {
	w, h := dc.Width(), dc.Height()
	if in.Overlay != nil {
		dc.DrawImage(imaging.Resize(in.Overlay, w, h, imaging.Lanczos), 0, 0)
	}

	size := decor.StickerSize(w, h)
	if size <= 0 {
		return
	}
	for i, s := range in.Stickers {
		if i == decor.MaxStickers {
			break
		}
		if s.Image == nil {
			continue
		}
		r := s.Anchor.Rect(w, h, size)
		dc.DrawImageAnchored(fitSquare(s.Image, size), r.Min.X+size/2, r.Min.Y+size/2, 0.5, 0.5)
	}
}

// fitSquare scales img up or down so its longer side is size.
func fitSquare(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, size, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, size, imaging.Lanczos)
}

func drawBranding(dc *gg.Context, in Input, g Geometry) error {
	if g.BrandingReserve == 0 {
		return nil
	}
	face, err := fonts.Regular(BrandingFontSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load branding font")
	}
	dc.SetFontFace(face)
	dc.SetColor(in.Decor.Fill.Ink())
	dc.DrawStringAnchored(BrandingText(in.Date), float64(dc.Width())/2, g.BrandingCenter(dc.Height()), 0.5, 0.5)
	return nil
}

// Encode encodes img as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
