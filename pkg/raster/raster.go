// Package raster holds captured photos and the slot collection they live in.
//
// A [Raster] is immutable once created: its pixels are never written after
// construction, so a raster can be shared between the slot collection, the
// compositor and a preview without copying. Replacing a slot discards the
// previous raster; nothing else holds ownership.
package raster

import (
	"image"
	"image/draw"
	"time"

	"github.com/google/uuid"
)

// Origin records how a raster entered the session.
type Origin string

const (
	// OriginCapture is a snapshot taken from the live feed.
	OriginCapture Origin = "capture"
	// OriginUpload is an externally decoded file substituting for a capture.
	OriginUpload Origin = "upload"
)

// Raster is a captured photo.
type Raster struct {
	// ID is the raster identity. Two rasters with identical pixels still
	// have different IDs.
	ID         uuid.UUID
	Origin     Origin
	Mirrored   bool
	CapturedAt time.Time

	img *image.NRGBA
}

// New copies img into a fresh buffer and wraps it as a raster. The caller may
// reuse img afterwards.
func New(img image.Image, origin Origin, mirrored bool, at time.Time) *Raster {
	return Adopt(copyNRGBA(img), origin, mirrored, at)
}

// Adopt wraps img without copying. The caller must not modify img afterwards.
func Adopt(img *image.NRGBA, origin Origin, mirrored bool, at time.Time) *Raster {
	return &Raster{
		ID:         uuid.New(),
		Origin:     origin,
		Mirrored:   mirrored,
		CapturedAt: at,
		img:        img,
	}
}

// Image returns the raster pixels. The returned image must be treated as
// read-only.
func (r *Raster) Image() image.Image { return r.img }

// Bounds returns the raster bounds.
func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.img.Bounds().Dx() }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

func copyNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
