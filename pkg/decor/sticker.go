package decor

import (
	"image"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// Overlay is a frame image stretched over the whole composite.
type Overlay struct {
	ID   string
	Name string
	Ref  string
}

// Overlays lists the built-in overlay frames. Refs are relative to the asset
// directory.
var Overlays = []Overlay{
	{ID: "classic", Name: "Classic", Ref: "frames/frame-classic.svg"},
	{ID: "polaroid", Name: "Polaroid", Ref: "frames/frame-polaroid.svg"},
	{ID: "vintage", Name: "Vintage", Ref: "frames/frame-vintage.svg"},
	{ID: "hearts", Name: "Hearts", Ref: "frames/frame-hearts.svg"},
	{ID: "stars", Name: "Stars", Ref: "frames/frame-stars.svg"},
	{ID: "birthday", Name: "Birthday", Ref: "frames/frame-birthday.svg"},
	{ID: "wedding", Name: "Wedding", Ref: "frames/frame-wedding.svg"},
	{ID: "neon", Name: "Neon", Ref: "frames/frame-neon.svg"},
	{ID: "floral", Name: "Floral", Ref: "frames/frame-floral.svg"},
	{ID: "retro", Name: "Retro", Ref: "frames/frame-retro.svg"},
	{ID: "minimal", Name: "Minimal", Ref: "frames/frame-minimal.svg"},
}

// LookupOverlay returns the overlay with the given ID.
func LookupOverlay(id string) (Overlay, bool) {
	for _, o := range Overlays {
		if o.ID == id {
			return o, true
		}
	}
	return Overlay{}, false
}

// Sticker is a decorative image placed at an anchor.
type Sticker struct {
	ID   string
	Name string
	Ref  string
	// Builtin is true when Builtin can draw the sticker without the file.
	Builtin bool
}

// Stickers lists the built-in stickers.
var Stickers = []Sticker{
	{ID: "stars", Name: "Stars", Ref: "stickers/stars.png", Builtin: true},
	{ID: "hearts", Name: "Hearts", Ref: "stickers/hearts.png", Builtin: true},
	{ID: "butterfly", Name: "Butterfly", Ref: "stickers/butterfly.png"},
	{ID: "cloud", Name: "Cloud", Ref: "stickers/cloud.png"},
	{ID: "rainbow", Name: "Rainbow", Ref: "stickers/rainbow.png"},
	{ID: "bow", Name: "Bow", Ref: "stickers/bow.png"},
	{ID: "flower", Name: "Flower", Ref: "stickers/flower.png"},
	{ID: "cat", Name: "Cat", Ref: "stickers/cat.png"},
	{ID: "sparkle", Name: "Sparkle", Ref: "stickers/sparkle.png", Builtin: true},
}

// LookupSticker returns the sticker with the given ID.
func LookupSticker(id string) (Sticker, bool) {
	for _, s := range Stickers {
		if s.ID == id {
			return s, true
		}
	}
	return Sticker{}, false
}

// MaxStickers is the most stickers drawn on one composite.
const MaxStickers = 3

// StickerScale is the sticker edge length relative to the shorter canvas side.
const StickerScale = 0.2

// Anchor is a corner or edge position on the canvas.
type Anchor string

const (
	TopLeft     Anchor = "top-left"
	TopRight    Anchor = "top-right"
	BottomLeft  Anchor = "bottom-left"
	BottomRight Anchor = "bottom-right"
	Top         Anchor = "top"
	Bottom      Anchor = "bottom"
	Left        Anchor = "left"
	Right       Anchor = "right"
)

// Anchors lists every valid anchor.
var Anchors = []Anchor{TopLeft, TopRight, BottomLeft, BottomRight, Top, Bottom, Left, Right}

// DefaultAnchors are assigned in order to stickers placed without one.
var DefaultAnchors = []Anchor{TopRight, BottomLeft, TopLeft}

// Valid reports whether a is a known anchor.
func (a Anchor) Valid() bool {
	for _, v := range Anchors {
		if a == v {
			return true
		}
	}
	return false
}

// Rect returns the square a sticker of edge size occupies on a w x h canvas,
// inset from the edges by an eighth of its size.
func (a Anchor) Rect(w, h, size int) image.Rectangle {
	m := size / 8
	left, right := m, w-size-m
	top, bottom := m, h-size-m
	cx, cy := (w-size)/2, (h-size)/2

	var x, y int
	switch a {
	case TopLeft:
		x, y = left, top
	case TopRight:
		x, y = right, top
	case BottomLeft:
		x, y = left, bottom
	case BottomRight:
		x, y = right, bottom
	case Top:
		x, y = cx, top
	case Bottom:
		x, y = cx, bottom
	case Left:
		x, y = left, cy
	case Right:
		x, y = right, cy
	}
	return image.Rect(x, y, x+size, y+size)
}

// StickerSize returns the sticker edge length for a w x h canvas.
func StickerSize(w, h int) int {
	return int(float64(min(w, h)) * StickerScale)
}

// Placement selects a sticker and where to put it. Sticker is a catalog ID or
// an asset reference. An empty Anchor takes the next default anchor.
type Placement struct {
	Sticker string `toml:"sticker" json:"sticker"`
	Anchor  Anchor `toml:"anchor,omitempty" json:"anchor,omitempty"`
}

func resolveStickerRef(id string) (string, error) {
	if s, ok := LookupSticker(id); ok {
		return s.Ref, nil
	}
	if err := errors.ValidateAssetRef(id); err != nil {
		return "", errors.New(errors.ErrCodeInvalidDecoration, "unknown sticker %q", id)
	}
	return id, nil
}
