package cache

import (
	"fmt"
)

// Keyer generates cache keys.
type Keyer interface {
	// AssetKey identifies a rasterized decoration asset.
	AssetKey(ref string, opts AssetKeyOpts) string

	// CompositeKey identifies an encoded composite built from inputs whose
	// pixels hash to inputHash.
	CompositeKey(inputHash string, opts CompositeKeyOpts) string
}

// AssetKeyOpts are the parameters that affect a rasterized asset.
type AssetKeyOpts struct {
	// SourceHash is the hash of the asset file contents.
	SourceHash string
	Width      int
	Height     int
}

// CompositeKeyOpts are the parameters that affect a composite.
type CompositeKeyOpts struct {
	LayoutID   string
	Mode       string
	Filter     string
	FrameColor string
	Overlay    string
	Stickers   []string
	// Date is the branding date, formatted, so a composite is not reused
	// across days.
	Date string

	CellWidth       int
	CellHeight      int
	Gap             int
	Padding         int
	BrandingReserve int
	CornerRadius    float64
	BorderWidth     float64

	// AssetVersions identify the overlay and sticker contents, in draw order.
	AssetVersions []string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AssetKey returns "asset:<hash>".
func (DefaultKeyer) AssetKey(ref string, opts AssetKeyOpts) string {
	return hashKey("asset", ref, opts.SourceHash, opts.Width, opts.Height)
}

// CompositeKey returns "composite:<layout>:<hash>".
func (DefaultKeyer) CompositeKey(inputHash string, opts CompositeKeyOpts) string {
	return hashKey(fmt.Sprintf("composite:%s", opts.LayoutID), inputHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix. The CLI scopes keys by build
// version so entries rendered by another release are never reused.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AssetKey generates a prefixed asset key.
func (k *ScopedKeyer) AssetKey(ref string, opts AssetKeyOpts) string {
	return k.prefix + k.inner.AssetKey(ref, opts)
}

// CompositeKey generates a prefixed composite key.
func (k *ScopedKeyer) CompositeKey(inputHash string, opts CompositeKeyOpts) string {
	return k.prefix + k.inner.CompositeKey(inputHash, opts)
}
