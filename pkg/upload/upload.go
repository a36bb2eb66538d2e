// Package upload turns user-supplied image files into rasters that can stand
// in for captures.
//
// Files are decoded (PNG, JPEG, GIF, WebP, BMP, TIFF; EXIF orientation is
// honored), then cover-cropped to the session's target cell size so every
// uploaded raster has normalized dimensions. Uploaded rasters are never
// mirrored.
package upload

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/raster"
)

// Batch is the outcome of loading a set of files.
type Batch struct {
	// Rasters holds the decoded photos in input order, at most the requested
	// capacity.
	Rasters []*raster.Raster
	// Skipped lists files that could not be decoded.
	Skipped []error
	// Truncated counts files ignored because capacity was reached.
	Truncated int
}

// Decode reads an image from r, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode image")
	}
	return img, nil
}

// Normalize cover-crops img to exactly w x h around its center.
func Normalize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// FromImage wraps an already decoded image as an uploaded raster of size w x h.
func FromImage(img image.Image, w, h int, at time.Time) *raster.Raster {
	return raster.Adopt(Normalize(img, w, h), raster.OriginUpload, false, at)
}

// Load decodes up to capacity files into rasters of size w x h. Undecodable
// files are reported in Batch.Skipped and do not consume capacity. Load fails
// only for invalid arguments.
func Load(paths []string, capacity, w, h int) (*Batch, error) {
	if capacity <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "capacity must be positive, got %d", capacity)
	}
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "target size must be positive, got %dx%d", w, h)
	}

	b := &Batch{}
	for i, p := range paths {
		if len(b.Rasters) == capacity {
			b.Truncated = len(paths) - i
			break
		}
		img, err := decodeFile(p)
		if err != nil {
			b.Skipped = append(b.Skipped, err)
			continue
		}
		b.Rasters = append(b.Rasters, FromImage(img, w, h, time.Now()))
	}
	return b, nil
}

func decodeFile(path string) (image.Image, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}
