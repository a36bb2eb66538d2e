package compose

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/observability"
	"github.com/matzehuels/photobooth/pkg/raster"
)

// mapLoader serves assets from memory and fails for unknown refs.
type mapLoader map[string]image.Image

func (m mapLoader) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	if img, ok := m[ref]; ok {
		return img, nil
	}
	return nil, errors.New(errors.ErrCodeFileNotFound, "no asset %q", ref)
}

// blockingLoader never finishes on its own.
type blockingLoader struct{ started chan struct{} }

func (b *blockingLoader) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

type composeRecorder struct {
	observability.NoopComposeHooks
	mu       sync.Mutex
	started  int
	finished int
	failures []string
}

func (r *composeRecorder) OnComposeStart(context.Context, string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *composeRecorder) OnComposeComplete(context.Context, string, int, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

func (r *composeRecorder) OnDecorationFailure(_ context.Context, kind, ref string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, kind+":"+ref)
}

func recordCompose(t *testing.T) *composeRecorder {
	t.Helper()
	r := &composeRecorder{}
	observability.SetComposeHooks(r)
	t.Cleanup(observability.Reset)
	return r
}

func fixedClock() time.Time { return testDate }

func fullSlots(t *testing.T, d layout.Descriptor) *raster.Slots {
	t.Helper()
	s := raster.NewSlots(d.PhotoCount)
	for i := 0; i < d.PhotoCount; i++ {
		if err := s.Set(i, raster.New(solid(64, 48, red), raster.OriginCapture, false, testDate)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestComposeEncodesPNG(t *testing.T) {
	rec := recordCompose(t)
	d := layout.Default.Resolve("4v")
	c := New(WithClock(fixedClock))

	res, err := c.Compose(context.Background(), fullSlots(t, d), d, decor.Set{Filter: "bw"})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	w, h := CanvasSize(d)
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h || res.Width != w || res.Height != h {
		t.Errorf("size = %v (%dx%d), want %dx%d", img.Bounds(), res.Width, res.Height, w, h)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if rec.started != 1 || rec.finished != 1 {
		t.Errorf("hooks start=%d complete=%d, want 1 each", rec.started, rec.finished)
	}
}

func TestComposeIncompleteSlots(t *testing.T) {
	d := layout.Default.Resolve("4v")
	s := fullSlots(t, d)
	if err := s.Clear(2); err != nil {
		t.Fatal(err)
	}
	if _, err := New().Compose(context.Background(), s, d, decor.Set{}); !errors.Is(err, errors.ErrCodeIncompleteSlots) {
		t.Errorf("err = %v, want INCOMPLETE_SLOTS", err)
	}

	short := raster.NewSlots(3)
	for i := 0; i < 3; i++ {
		_ = short.Set(i, raster.New(solid(4, 4, red), raster.OriginCapture, false, testDate))
	}
	if _, err := New().Compose(context.Background(), short, d, decor.Set{}); !errors.Is(err, errors.ErrCodeIncompleteSlots) {
		t.Errorf("slot count mismatch: err = %v, want INCOMPLETE_SLOTS", err)
	}
}

func TestComposeInvalidDecoration(t *testing.T) {
	d := layout.Default.Resolve("2h")
	sets := []decor.Set{
		{Filter: "wobble(3)"},
		{FrameColor: "chartreuse"},
		{Overlay: "../etc/passwd"},
		{Stickers: []decor.Placement{{Sticker: "stars", Anchor: "middle"}}},
	}
	for _, set := range sets {
		if _, err := New().Compose(context.Background(), fullSlots(t, d), d, set); !errors.Is(err, errors.ErrCodeInvalidDecoration) {
			t.Errorf("Compose(%+v) err = %v, want INVALID_DECORATION", set, err)
		}
	}
}

func TestComposeDeterministic(t *testing.T) {
	d := layout.Default.Resolve("6g")
	slots := fullSlots(t, d)
	set := decor.Set{
		Filter:     "warm",
		FrameColor: "rainbow",
		Stickers:   []decor.Placement{{Sticker: "stars"}, {Sticker: "hearts"}},
	}
	c := New(WithClock(fixedClock))

	a, err := c.Compose(context.Background(), slots, d, set)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compose(context.Background(), slots, d, set)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.PNG, b.PNG) {
		t.Error("identical inputs produced different bytes")
	}
}

func TestComposeOverlayFailureIsNonFatal(t *testing.T) {
	rec := recordCompose(t)
	d := layout.Default.Resolve("2h")
	slots := fullSlots(t, d)
	c := New(WithClock(fixedClock), WithLoader(mapLoader{}))

	with, err := c.Compose(context.Background(), slots, d, decor.Set{Overlay: "classic"})
	if err != nil {
		t.Fatalf("overlay failure must not fail the composite: %v", err)
	}
	if len(with.Skipped) != 1 || !errors.Is(with.Skipped[0], errors.ErrCodeDecorationLoad) {
		t.Fatalf("skipped = %v, want one DECORATION_LOAD_FAILURE", with.Skipped)
	}
	if len(rec.failures) != 1 || rec.failures[0] != "overlay:frames/frame-classic.svg" {
		t.Errorf("failure hooks = %v", rec.failures)
	}

	without, err := c.Compose(context.Background(), slots, d, decor.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(with.PNG, without.PNG) {
		t.Error("composite with a failed overlay differs from one without an overlay")
	}
}

func TestComposeStickerFailuresSkippedIndependently(t *testing.T) {
	d := layout.Default.Resolve("4v")
	slots := fullSlots(t, d)
	loader := mapLoader{
		"stickers/stars.png":  solid(10, 10, blue),
		"stickers/hearts.png": solid(10, 10, green),
	}
	c := New(WithClock(fixedClock), WithLoader(loader))

	set := decor.Set{Stickers: []decor.Placement{
		{Sticker: "stars", Anchor: decor.TopLeft},
		{Sticker: "cat", Anchor: decor.TopRight},
		{Sticker: "hearts", Anchor: decor.BottomLeft},
	}}
	res, err := c.Compose(context.Background(), slots, d, set)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %v, want only the cat sticker", res.Skipped)
	}

	w, h := res.Width, res.Height
	size := decor.StickerSize(w, h)
	x, y := center(decor.TopLeft.Rect(w, h, size))
	if got := pixel(res.Image, x, y); got != blue {
		t.Errorf("stars sticker = %v, want blue", got)
	}
	x, y = center(decor.BottomLeft.Rect(w, h, size))
	if got := pixel(res.Image, x, y); got != green {
		t.Errorf("hearts sticker kept its own anchor: got %v, want green", got)
	}
}

func TestComposeAssetTimeout(t *testing.T) {
	d := layout.Default.Resolve("2h")
	bl := &blockingLoader{started: make(chan struct{}, 1)}
	c := New(WithLoader(bl), WithAssetTimeout(10*time.Millisecond))

	res, err := c.Compose(context.Background(), fullSlots(t, d), d, decor.Set{Overlay: "classic"})
	if err != nil {
		t.Fatalf("timed out overlay must not fail the composite: %v", err)
	}
	if len(res.Skipped) != 1 || !errors.Is(res.Skipped[0], errors.ErrCodeDecorationLoad) {
		t.Errorf("skipped = %v, want one DECORATION_LOAD_FAILURE", res.Skipped)
	}
}

func TestComposeCanceled(t *testing.T) {
	d := layout.Default.Resolve("2h")
	bl := &blockingLoader{started: make(chan struct{}, 1)}
	c := New(WithLoader(bl), WithAssetTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-bl.started
		cancel()
	}()
	if _, err := c.Compose(ctx, fullSlots(t, d), d, decor.Set{Overlay: "classic"}); err == nil {
		t.Error("canceled compose succeeded")
	}
}

func TestComposeSingle(t *testing.T) {
	s := raster.NewSlots(1)
	_ = s.Set(0, raster.New(solid(320, 240, red), raster.OriginCapture, true, testDate))

	res, err := New().Compose(context.Background(), s, layout.Single, decor.Set{Stickers: []decor.Placement{{Sticker: "sparkle"}}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 320 || res.Height != 240 {
		t.Errorf("single composite = %dx%d, want the photo size", res.Width, res.Height)
	}
}

func TestComposeImagesUsesRequestDate(t *testing.T) {
	d := layout.Default.Resolve("2h")
	images := []image.Image{solid(8, 8, red), solid(8, 8, red)}
	c := New(WithClock(func() time.Time { return testDate.AddDate(1, 0, 0) }))

	viaClock, err := c.ComposeImages(context.Background(), images, d, decor.Set{})
	if err != nil {
		t.Fatal(err)
	}
	viaRequest, err := c.Do(context.Background(), Request{Images: images, Layout: d, Date: testDate})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(viaClock.PNG, viaRequest.PNG) {
		t.Error("branding date did not change the output")
	}
}
