package compose

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
)

var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
	white  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

var testDate = time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func resolve(t *testing.T, s decor.Set) decor.Resolved {
	t.Helper()
	r, err := s.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return r
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) bool { return int(x)-int(y) <= 1 && int(y)-int(x) <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func center(r image.Rectangle) (int, int) {
	return (r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2
}

func TestRenderPlacesPhotosRowMajor(t *testing.T) {
	d := layout.Default.Resolve("4g")
	colors := []color.NRGBA{red, green, blue, yellow}
	images := make([]image.Image, len(colors))
	for i, c := range colors {
		images[i] = solid(400, 300, c)
	}

	img, err := Render(Input{Images: images, Layout: d, Decor: resolve(t, decor.Set{}), Date: testDate}, DefaultGeometry)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := CanvasSize(d); img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("bounds = %v, want %dx%d", img.Bounds(), w, h)
	}
	for i, c := range colors {
		x, y := center(CellRect(d, i))
		if got := pixel(img, x, y); got != c {
			t.Errorf("cell %d center = %v, want %v", i, got, c)
		}
	}
	if got := pixel(img, 5, 5); got != white {
		t.Errorf("frame pixel = %v, want white", got)
	}
}

func TestRenderMismatchedSources(t *testing.T) {
	d := layout.Default.Resolve("4v")
	images := []image.Image{
		solid(640, 480, red),
		solid(100, 400, green),
		solid(50, 50, blue),
		solid(1000, 200, yellow),
	}
	img, err := Render(Input{Images: images, Layout: d, Decor: resolve(t, decor.Set{})}, DefaultGeometry)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range []color.NRGBA{red, green, blue, yellow} {
		r := CellRect(d, i)
		for _, p := range []image.Point{{r.Min.X + 10, r.Min.Y + 10}, {r.Max.X - 10, r.Max.Y - 10}} {
			if got := pixel(img, p.X, p.Y); !near(got, c) {
				t.Errorf("cell %d at %v = %v, want %v", i, p, got, c)
			}
		}
	}
}

func TestRenderFilterOnlyTouchesPhotos(t *testing.T) {
	d := layout.Default.Resolve("2h")
	images := []image.Image{solid(400, 300, red), solid(400, 300, red)}
	in := Input{Images: images, Layout: d, Decor: resolve(t, decor.Set{Filter: "invert(100%)"})}

	img, err := Render(in, DefaultGeometry)
	if err != nil {
		t.Fatal(err)
	}
	x, y := center(CellRect(d, 1))
	if got, want := pixel(img, x, y), (color.NRGBA{G: 255, B: 255, A: 255}); got != want {
		t.Errorf("filtered photo = %v, want %v", got, want)
	}
	if got := pixel(img, 5, 5); got != white {
		t.Errorf("frame pixel = %v, want unfiltered white", got)
	}
	if got := images[0].At(10, 10); got != red {
		t.Errorf("source raster mutated to %v", got)
	}
}

func TestRenderDeterministic(t *testing.T) {
	d := layout.Default.Resolve("3v")
	images := []image.Image{solid(320, 240, red), solid(640, 480, green), solid(300, 300, blue)}
	in := Input{
		Images: images,
		Layout: d,
		Decor:  resolve(t, decor.Set{Filter: "vintage", FrameColor: "glitter"}),
		Stickers: []PlacedSticker{
			{Image: solid(10, 10, yellow), Anchor: decor.TopRight},
		},
		Date: testDate,
	}

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		img, err := Render(in, DefaultGeometry)
		if err != nil {
			t.Fatal(err)
		}
		data, err := Encode(img)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("identical inputs produced different PNG bytes")
	}
}

func TestRenderIncomplete(t *testing.T) {
	d := layout.Default.Resolve("4v")
	three := []image.Image{solid(4, 4, red), solid(4, 4, red), solid(4, 4, red)}
	if _, err := Render(Input{Images: three, Layout: d}, DefaultGeometry); !errors.Is(err, errors.ErrCodeIncompleteSlots) {
		t.Errorf("3 of 4 photos: err = %v, want INCOMPLETE_SLOTS", err)
	}
	withNil := append(three, nil)
	if _, err := Render(Input{Images: withNil, Layout: d}, DefaultGeometry); !errors.Is(err, errors.ErrCodeIncompleteSlots) {
		t.Errorf("nil photo: err = %v, want INCOMPLETE_SLOTS", err)
	}
}

func TestRenderInvalidLayout(t *testing.T) {
	d := layout.Descriptor{ID: "bad", PhotoCount: 5, Grid: layout.Grid{Cols: 2, Rows: 2}}
	if _, err := Render(Input{Layout: d}, DefaultGeometry); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("err = %v, want INVALID_LAYOUT", err)
	}
}

func TestRenderOverlayOccludes(t *testing.T) {
	d := layout.Default.Resolve("2h")
	in := Input{
		Images:  []image.Image{solid(400, 300, red), solid(400, 300, red)},
		Layout:  d,
		Decor:   resolve(t, decor.Set{}),
		Overlay: solid(10, 10, green),
	}
	img, err := Render(in, DefaultGeometry)
	if err != nil {
		t.Fatal(err)
	}
	x, y := center(CellRect(d, 0))
	if got := pixel(img, x, y); got != green {
		t.Errorf("photo under opaque overlay = %v, want green", got)
	}
}

func TestRenderStickers(t *testing.T) {
	d := layout.Default.Resolve("4v")
	images := []image.Image{solid(4, 4, red), solid(4, 4, red), solid(4, 4, red), solid(4, 4, red)}
	in := Input{
		Images: images,
		Layout: d,
		Decor:  resolve(t, decor.Set{}),
		Stickers: []PlacedSticker{
			{Image: solid(10, 10, blue), Anchor: decor.TopLeft},
			{Image: solid(20, 10, green), Anchor: decor.BottomRight},
		},
	}
	img, err := Render(in, DefaultGeometry)
	if err != nil {
		t.Fatal(err)
	}

	w, h := CanvasSize(d)
	size := decor.StickerSize(w, h)
	x, y := center(decor.TopLeft.Rect(w, h, size))
	if got := pixel(img, x, y); got != blue {
		t.Errorf("top-left sticker = %v, want blue", got)
	}
	x, y = center(decor.BottomRight.Rect(w, h, size))
	if got := pixel(img, x, y); got != green {
		t.Errorf("bottom-right sticker = %v, want green", got)
	}
}

func TestRenderBranding(t *testing.T) {
	d := layout.Default.Resolve("2h")
	images := []image.Image{solid(4, 4, red), solid(4, 4, red)}

	// inked reports whether the branding band holds text drawn in the
	// contrasting ink: dark on light frames, light on dark ones.
	inked := func(frame string, dark bool) bool {
		t.Helper()
		res := resolve(t, decor.Set{FrameColor: frame})
		img, err := Render(Input{Images: images, Layout: d, Decor: res, Date: testDate}, DefaultGeometry)
		if err != nil {
			t.Fatal(err)
		}
		_, h := CanvasSize(d)
		top := h - DefaultGeometry.Padding - DefaultGeometry.BrandingReserve
		for y := top; y < h; y++ {
			for x := 0; x < img.Bounds().Dx(); x++ {
				p := pixel(img, x, y)
				if dark && p.R < 0x80 || !dark && p.R > 0x80 {
					return true
				}
			}
		}
		return false
	}

	if !inked("white", true) {
		t.Error("no dark branding ink found on white frame")
	}
	if !inked("black", false) {
		t.Error("no light branding ink found on black frame")
	}
}

func TestRenderSingle(t *testing.T) {
	in := Input{
		Images: []image.Image{solid(640, 480, red)},
		Layout: layout.Single,
		Decor:  resolve(t, decor.Set{FrameColor: "black"}),
	}
	img, err := Render(in, DefaultGeometry)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("single bounds = %v, want 640x480", b)
	}
	for _, p := range []image.Point{{0, 0}, {320, 240}, {639, 479}} {
		if got := pixel(img, p.X, p.Y); got != red {
			t.Errorf("single pixel %v = %v, want red (no frame, no branding)", p, got)
		}
	}
}

func TestBrandingText(t *testing.T) {
	if got, want := BrandingText(testDate), "Photo Booth • Feb 14, 2024"; got != want {
		t.Errorf("BrandingText = %q, want %q", got, want)
	}
}
