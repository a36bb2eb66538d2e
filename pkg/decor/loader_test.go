package decor

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/photobooth/pkg/cache"
	"github.com/matzehuels/photobooth/pkg/errors"
)

// fakeRasterizer returns a w x h PNG and counts calls.
type fakeRasterizer struct{ calls int }

func (f *fakeRasterizer) Rasterize(ctx context.Context, svg []byte, w, h int) ([]byte, error) {
	f.calls++
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAsset(t *testing.T, dir, ref string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileLoaderRaster(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 7, 5)))
	writeAsset(t, dir, "stickers/cat.png", buf.Bytes())

	img, err := NewFileLoader(dir).Load(context.Background(), "stickers/cat.png", 50, 50)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 7 {
		t.Errorf("raster assets keep their native size, got %v", img.Bounds())
	}
}

// emptyLoader has no assets and no notion of versions.
type emptyLoader struct{}

func (emptyLoader) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	return nil, errors.New(errors.ErrCodeFileNotFound, "no asset %q", ref)
}

func TestAssetVersion(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "stickers/cat.png", []byte("v1"))
	l := DefaultLoader(dir, nil, nil)

	v1 := AssetVersion(l, "stickers/cat.png")
	if v1 == AssetVersion(l, "stickers/dog.png") {
		t.Error("present and missing assets share a version")
	}
	writeAsset(t, dir, "stickers/cat.png", []byte("v2"))
	if AssetVersion(l, "stickers/cat.png") == v1 {
		t.Error("version did not change with the file contents")
	}

	if got := AssetVersion(Builtin{}, "stickers/hearts.png"); got != "builtin:hearts" {
		t.Errorf("builtin version = %q", got)
	}
	if got := AssetVersion(emptyLoader{}, "x.png"); got != "" {
		t.Errorf("non-versioning loader = %q, want empty", got)
	}
}

func TestFileLoaderSVGCached(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "frames/frame-classic.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))

	r := &fakeRasterizer{}
	l := NewFileLoader(dir)
	l.Cache = cache.NewMemoryCache(4)
	l.Rasterizer = r

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		img, err := l.Load(ctx, "frames/frame-classic.svg", 40, 30)
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
			t.Errorf("svg size = %v, want 40x30", img.Bounds())
		}
	}
	if r.calls != 1 {
		t.Errorf("rasterizer calls = %d, want 1", r.calls)
	}
	if _, err := l.Load(ctx, "frames/frame-classic.svg", 80, 60); err != nil || r.calls != 2 {
		t.Errorf("new size should rasterize again: calls=%d err=%v", r.calls, err)
	}
}

func TestFileLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "broken.png", []byte("nope"))
	l := NewFileLoader(dir)
	ctx := context.Background()

	if _, err := l.Load(ctx, "missing.png", 1, 1); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing = %v", err)
	}
	if _, err := l.Load(ctx, "../outside.png", 1, 1); !errors.Is(err, errors.ErrCodeInvalidDecoration) {
		t.Errorf("traversal = %v", err)
	}
	if _, err := l.Load(ctx, "broken.png", 1, 1); !errors.Is(err, errors.ErrCodeDecorationLoad) {
		t.Errorf("undecodable = %v", err)
	}
	if _, err := NewFileLoader("").Load(ctx, "a.png", 1, 1); err == nil {
		t.Error("empty dir should fail")
	}
}

func TestDefaultLoaderFallsBackToBuiltin(t *testing.T) {
	l := DefaultLoader(t.TempDir(), nil, nil)
	img, err := l.Load(context.Background(), "stickers/stars.png", 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("builtin size = %v", img.Bounds())
	}

	_, err = l.Load(context.Background(), "stickers/cat.png", 64, 64)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("cat without file = %v, want FILE_NOT_FOUND first", err)
	}
}

func TestBuiltinStickersDraw(t *testing.T) {
	for id := range builtinStickers {
		img, err := Builtin{}.Load(context.Background(), id, 48, 48)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		opaque := false
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y && !opaque; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
					opaque = true
					break
				}
			}
		}
		if !opaque {
			t.Errorf("%s drew nothing", id)
		}
	}
}
