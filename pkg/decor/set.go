package decor

import (
	"github.com/matzehuels/photobooth/pkg/errors"
)

// Set is a decoration declaration as chosen by the user or read from config.
// Decorations are applied at composite time only; they never modify a
// captured raster.
type Set struct {
	// Filter is a preset ID or a filter expression.
	Filter string `toml:"filter" json:"filter,omitempty"`
	// FrameColor is a frame color ID or a hex color. Empty means white.
	FrameColor string `toml:"frame_color" json:"frame_color,omitempty"`
	// Overlay is an overlay ID or an asset reference. Empty means none.
	Overlay string `toml:"overlay" json:"overlay,omitempty"`
	// Stickers beyond MaxStickers are ignored.
	Stickers []Placement `toml:"stickers" json:"stickers,omitempty"`
}

// ResolvedSticker is a sticker ready to load and draw.
type ResolvedSticker struct {
	ID     string
	Ref    string
	Anchor Anchor
}

// Resolved is a validated decoration set with every categorical choice
// turned into something drawable.
type Resolved struct {
	Filter   Filter
	Fill     Fill
	Overlay  string
	Stickers []ResolvedSticker
}

// Resolve validates the set. It fails with INVALID_DECORATION on unknown
// filter functions, colors, anchors, or unsafe asset references.
func (s Set) Resolve() (Resolved, error) {
	var r Resolved
	var err error

	if r.Filter, err = ParseFilter(s.Filter); err != nil {
		return Resolved{}, err
	}
	if r.Fill, err = ResolveFill(s.FrameColor); err != nil {
		return Resolved{}, err
	}

	if ov := s.Overlay; ov != "" && ov != "none" {
		if o, ok := LookupOverlay(ov); ok {
			r.Overlay = o.Ref
		} else if err := errors.ValidateAssetRef(ov); err != nil {
			return Resolved{}, errors.New(errors.ErrCodeInvalidDecoration, "unknown overlay %q", ov)
		} else {
			r.Overlay = ov
		}
	}

	next := 0
	for _, p := range s.Stickers {
		if len(r.Stickers) == MaxStickers {
			break
		}
		if p.Sticker == "" || p.Sticker == "none" {
			continue
		}
		ref, err := resolveStickerRef(p.Sticker)
		if err != nil {
			return Resolved{}, err
		}
		anchor := p.Anchor
		if anchor == "" {
			anchor = DefaultAnchors[next%len(DefaultAnchors)]
			next++
		} else if !anchor.Valid() {
			return Resolved{}, errors.New(errors.ErrCodeInvalidDecoration, "unknown sticker anchor %q", anchor)
		}
		r.Stickers = append(r.Stickers, ResolvedSticker{ID: p.Sticker, Ref: ref, Anchor: anchor})
	}
	return r, nil
}

// StickerIDs returns the sticker IDs in placement order.
func (s Set) StickerIDs() []string {
	out := make([]string, 0, len(s.Stickers))
	for _, p := range s.Stickers {
		out = append(out, p.Sticker+"@"+string(p.Anchor))
	}
	return out
}
