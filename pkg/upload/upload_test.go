package upload

import (
	"image"
		"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/raster"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	out := Normalize(src, 40, 30)
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
		t.Errorf("Normalize size = %v, want 40x30", out.Bounds())
	}
}

func TestFromImage(t *testing.T) {
	r := FromImage(image.NewGray(image.Rect(0, 0, 10, 10)), 8, 6, time.Time{})
	if r.Origin != raster.OriginUpload || r.Mirrored {
		t.Errorf("metadata = %+v", r)
	}
	if r.Width() != 8 || r.Height() != 6 {
		t.Errorf("size = %dx%d", r.Width(), r.Height())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 64, 48)
	b := writePNG(t, dir, "b.png", 30, 90)
	bad := filepath.Join(dir, "bad.png")
	_ = os.WriteFile(bad, []byte("not an image"), 0o644)
	missing := filepath.Join(dir, "missing.png")

	batch, err := Load([]string{a, bad, missing, b}, 4, 40, 30)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(batch.Rasters) != 2 {
		t.Fatalf("rasters = %d, want 2", len(batch.Rasters))
	}
	for i, r := range batch.Rasters {
		if r.Width() != 40 || r.Height() != 30 {
			t.Errorf("raster %d size = %dx%d, want 40x30", i, r.Width(), r.Height())
		}
	}
	if len(batch.Skipped) != 2 {
		t.Errorf("skipped = %d, want 2", len(batch.Skipped))
	}
	if !errors.Is(batch.Skipped[1], errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", batch.Skipped[1])
	}
}

func TestLoadCapacity(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, n := range []string{"1.png", "2.png", "3.png"} {
		paths = append(paths, writePNG(t, dir, n, 10, 10))
	}
	batch, err := Load(paths, 2, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Rasters) != 2 || batch.Truncated != 1 {
		t.Errorf("rasters = %d truncated = %d, want 2 and 1", len(batch.Rasters), batch.Truncated)
	}
}

func TestLoadInvalidArgs(t *testing.T) {
	if _, err := Load(nil, 0, 10, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero capacity error = %v", err)
	}
	if _, err := Load(nil, 1, 0, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero width error = %v", err)
	}
}
