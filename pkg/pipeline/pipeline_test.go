package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/photobooth/pkg/cache"
	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/raster"
)

var testDate = time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func fullSlots(t *testing.T, n int) *raster.Slots {
	t.Helper()
	s := raster.NewSlots(n)
	for i := 0; i < n; i++ {
		r := raster.New(solid(32, 24, color.NRGBA{R: uint8(40 * i), G: 90, B: 160, A: 255}), raster.OriginCapture, true, testDate)
		if err := s.Set(i, r); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// failingLoader fails every asset.
type failingLoader struct{}

func (failingLoader) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	return nil, errors.New(errors.ErrCodeFileNotFound, "no asset %q", ref)
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Layout != layout.DefaultID {
		t.Errorf("Layout = %q, want %q", opts.Layout, layout.DefaultID)
	}
	if opts.Mode != layout.ModeStrip {
		t.Errorf("Mode = %q, want strip", opts.Mode)
	}
	if opts.Date.IsZero() || opts.Logger == nil {
		t.Error("Date and Logger should be defaulted")
	}
	if opts.LayoutFallback() {
		t.Error("empty layout is not a fallback")
	}
}

func TestOptionsUnknownValuesFallBack(t *testing.T) {
	opts := Options{Layout: "12x", Mode: "panorama"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("unknown layout and mode must not fail: %v", err)
	}
	if opts.Layout != layout.DefaultID || !opts.LayoutFallback() {
		t.Errorf("Layout = %q fallback=%v", opts.Layout, opts.LayoutFallback())
	}
	if opts.Mode != layout.ModeStrip {
		t.Errorf("Mode = %q, want strip", opts.Mode)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		set     decor.Set
		wantErr bool
	}{
		{decor.Set{}, false},
		{decor.Set{Filter: "vintage", FrameColor: "#ff00aa", Overlay: "hearts"}, false},
		{decor.Set{Filter: "sharpen(2)"}, true},
		{decor.Set{FrameColor: "#ggg"}, true},
		{decor.Set{Stickers: []decor.Placement{{Sticker: "stars", Anchor: "center"}}}, true},
	}
	for _, tt := range tests {
		opts := Options{Decor: tt.set}
		err := opts.ValidateAndSetDefaults()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.set, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidDecoration) {
			t.Errorf("Validate(%+v) code = %s, want INVALID_DECORATION", tt.set, errors.GetCode(err))
		}
	}
}

func TestOptionsIdempotent(t *testing.T) {
	opts := Options{Layout: "6g", Date: testDate}
	_ = opts.ValidateAndSetDefaults()
	first := opts
	_ = opts.ValidateAndSetDefaults()
	if opts.Layout != first.Layout || !opts.Date.Equal(first.Date) || opts.Mode != first.Mode {
		t.Error("second ValidateAndSetDefaults changed options")
	}
}

func TestOptionsDescriptor(t *testing.T) {
	opts := Options{Layout: "9g", Mode: layout.ModeSingle}
	opts.SetDefaults()
	if d := opts.Descriptor(); d.ID != layout.Single.ID {
		t.Errorf("single mode descriptor = %s", d.ID)
	}
	opts.Mode = layout.ModeStrip
	if d := opts.Descriptor(); d.ID != "9g" {
		t.Errorf("strip mode descriptor = %s, want 9g", d.ID)
	}
}

func TestExecuteCaches(t *testing.T) {
	mem := cache.NewMemoryCache(8)
	r := NewRunner(mem, nil, nil, nil)
	slots := fullSlots(t, 4)
	opts := Options{Layout: "4g", Decor: decor.Set{Filter: "warm"}, Date: testDate}

	first, err := r.Execute(context.Background(), slots, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.CompositeHit {
		t.Error("first run hit the cache")
	}
	w, h := compose.CanvasSize(layout.Default.Resolve("4g"))
	if first.Width != w || first.Height != h {
		t.Errorf("size = %dx%d, want %dx%d", first.Width, first.Height, w, h)
	}
	if !strings.HasPrefix(first.Filename, "photo-strip-") {
		t.Errorf("Filename = %q", first.Filename)
	}

	second, err := r.Execute(context.Background(), slots, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.CompositeHit {
		t.Error("second run missed the cache")
	}
	if !bytes.Equal(first.PNG, second.PNG) || second.Width != w || second.Height != h {
		t.Error("cached composite differs")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), slots, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.CompositeHit {
		t.Error("refresh hit the cache")
	}
}

func TestExecuteKeyTracksInputs(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(8), nil, nil, nil)
	slots := fullSlots(t, 4)
	opts := Options{Layout: "4v", Date: testDate}

	if _, err := r.Execute(context.Background(), slots, opts); err != nil {
		t.Fatal(err)
	}

	// A retake replaces one raster; the composite must be rebuilt.
	_ = slots.Set(2, raster.New(solid(32, 24, color.White), raster.OriginCapture, true, testDate))
	res, err := r.Execute(context.Background(), slots, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.CompositeHit {
		t.Error("retaken slot reused the old composite")
	}

	opts.Decor.FrameColor = "black"
	res, err = r.Execute(context.Background(), slots, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.CompositeHit {
		t.Error("new frame color reused the old composite")
	}
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(16, 16, c)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteKeyTracksAssetContent(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "party.png")
	writePNG(t, overlay, color.NRGBA{R: 255, A: 128})

	mem := cache.NewMemoryCache(8)
	r := NewRunner(mem, nil, compose.New(compose.WithLoader(decor.DefaultLoader(dir, nil, nil))), nil)
	slots := fullSlots(t, 2)
	opts := Options{Layout: "2h", Decor: decor.Set{Overlay: "party.png"}, Date: testDate}

	hits := func() bool {
		t.Helper()
		res, err := r.Execute(context.Background(), slots, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Skipped) != 0 {
			t.Fatalf("skipped = %v", res.Skipped)
		}
		return res.CacheInfo.CompositeHit
	}

	if hits() {
		t.Fatal("first execute hit the cache")
	}
	if !hits() {
		t.Fatal("unchanged overlay missed the cache")
	}

	writePNG(t, overlay, color.NRGBA{B: 255, A: 128})
	if hits() {
		t.Error("edited overlay reused the old composite")
	}
}

func TestExecuteKeyTracksGeometry(t *testing.T) {
	mem := cache.NewMemoryCache(8)
	slots := fullSlots(t, 2)
	opts := Options{Layout: "2h", Date: testDate}

	if _, err := NewRunner(mem, nil, nil, nil).Execute(context.Background(), slots, opts); err != nil {
		t.Fatal(err)
	}

	g := compose.DefaultGeometry
	g.Gap += 4
	res, err := NewRunner(mem, nil, compose.New(compose.WithGeometry(g)), nil).Execute(context.Background(), slots, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.CompositeHit {
		t.Error("wider gap reused the old composite")
	}
}

func TestExecuteSkippedNotCached(t *testing.T) {
	mem := cache.NewMemoryCache(8)
	r := NewRunner(mem, nil, compose.New(compose.WithLoader(failingLoader{})), nil)
	slots := fullSlots(t, 2)
	opts := Options{Layout: "2h", Decor: decor.Set{Overlay: "classic"}, Date: testDate}

	for i := 0; i < 2; i++ {
		res, err := r.Execute(context.Background(), slots, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Skipped) != 1 {
			t.Fatalf("skipped = %v", res.Skipped)
		}
		if res.CacheInfo.CompositeHit {
			t.Error("composite with a skipped overlay was cached")
		}
	}
	if mem.Len() != 0 {
		t.Errorf("cache holds %d entries", mem.Len())
	}
}

func TestExecuteIncomplete(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)

	slots := fullSlots(t, 4)
	_ = slots.Clear(0)
	if _, err := r.Execute(context.Background(), slots, Options{Layout: "4v"}); !errors.Is(err, errors.ErrCodeIncompleteSlots) {
		t.Errorf("empty slot: err = %v", err)
	}

	if _, err := r.Execute(context.Background(), fullSlots(t, 3), Options{Layout: "4v"}); !errors.Is(err, errors.ErrCodeIncompleteSlots) {
		t.Errorf("3 slots for 4v: err = %v", err)
	}
}

func TestExecuteSingleAndSave(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	res, err := r.Execute(context.Background(), fullSlots(t, 1), Options{Mode: layout.ModeSingle, Date: testDate})
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 32 || res.Height != 24 {
		t.Errorf("single composite = %dx%d, want photo size", res.Width, res.Height)
	}
	if res.Filename != "photo-booth-1707912000000.png" {
		t.Errorf("Filename = %q", res.Filename)
	}

	dir := t.TempDir()
	path, err := res.Save(dir)
	if err != nil {
		t.Fatal(err)
	}
	if data, err := os.ReadFile(path); err != nil || !bytes.Equal(data, res.PNG) {
		t.Errorf("saved file mismatch: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("saved to %s", path)
	}
}

func TestInputHash(t *testing.T) {
	a := fullSlots(t, 2)
	if InputHash(a) != InputHash(a) {
		t.Fatal("hash not stable")
	}
	b := fullSlots(t, 2)
	if InputHash(a) == InputHash(b) {
		t.Error("different rasters with equal pixels share a hash")
	}
	empty := raster.NewSlots(2)
	if InputHash(empty) == InputHash(a) {
		t.Error("empty slots hash like full ones")
	}
}
