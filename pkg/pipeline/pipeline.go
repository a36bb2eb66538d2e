// Package pipeline runs the composite step shared by the interactive booth
// and the batch commands: resolve options, compose the slots, cache the
// encoded result and name it for export.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(16), nil, nil, logger)
//	res, err := runner.Execute(ctx, machine.Slots(), pipeline.Options{
//	    Layout: "4v",
//	    Decor:  decor.Set{Filter: "vintage", FrameColor: "pink"},
//	})
//	if err != nil {
//	    return err
//	}
//	path, err := res.Save(outputDir)
//
// Composites are cached by the identity of the rasters they were built from,
// so re-exporting the same strip with the same decorations is free. A
// composite that skipped a decoration is never cached; the next call retries
// the asset.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobooth/pkg/cache"
	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/export"
	"github.com/matzehuels/photobooth/pkg/layout"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options selects what to compose. The zero value is the default four-photo
// strip with no decorations, dated now.
type Options struct {
	// Layout is a layout ID. Unknown IDs fall back to layout.DefaultID.
	Layout string `json:"layout,omitempty"`
	// Mode selects the single-photo or strip path.
	Mode  layout.Mode `json:"mode,omitempty"`
	Decor decor.Set   `json:"decor"`
	// Date is printed in the branding band and used for the file name.
	Date    time.Time `json:"date,omitempty"`
	Refresh bool      `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// layoutFallback records that Layout was unknown.
	layoutFallback bool
	validated      bool
}

// SetDefaults fills in every unset field. Unknown layouts and modes are
// replaced by the defaults rather than rejected.
func (o *Options) SetDefaults() {
	if o.Layout == "" {
		o.Layout = layout.DefaultID
	}
	if _, ok := layout.Default.Lookup(o.Layout); !ok {
		o.layoutFallback = true
		o.Layout = layout.DefaultID
	}
	o.Mode, _ = layout.ParseMode(string(o.Mode))
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the decoration set.
func (o *Options) Validate() error {
	_, err := o.Decor.Resolve()
	return err
}

// ValidateAndSetDefaults applies defaults and validates.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Descriptor returns the layout to compose: the single-photo descriptor in
// single mode, the selected layout otherwise.
func (o *Options) Descriptor() layout.Descriptor {
	return layout.ForMode(o.Mode, layout.Default.Resolve(o.Layout))
}

// LayoutFallback reports whether SetDefaults replaced an unknown layout.
func (o *Options) LayoutFallback() bool { return o.layoutFallback }

// Filename returns the export name for this composite.
func (o *Options) Filename() string {
	return export.Filename(o.Mode, o.Date)
}

// CompositeKeyOpts returns cache key options for a composite of d drawn
// with g. assets are the versions of the decoration assets, in draw order.
func (o *Options) CompositeKeyOpts(d layout.Descriptor, g compose.Geometry, assets []string) cache.CompositeKeyOpts {
	return cache.CompositeKeyOpts{
		LayoutID:        d.ID,
		Mode:            string(o.Mode),
		Filter:          o.Decor.Filter,
		FrameColor:      o.Decor.FrameColor,
		Overlay:         o.Decor.Overlay,
		Stickers:        o.Decor.StickerIDs(),
		Date:            o.Date.Format(compose.BrandingDateFormat),
		CellWidth:       g.CellWidth,
		CellHeight:      g.CellHeight,
		Gap:             g.Gap,
		Padding:         g.Padding,
		BrandingReserve: g.BrandingReserve,
		CornerRadius:    g.CornerRadius,
		BorderWidth:     g.BorderWidth,
		AssetVersions:   assets,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is an encoded composite ready for export.
type Result struct {
	PNG      []byte
	Filename string
	Layout   layout.Descriptor
	Width    int
	Height   int

	// Skipped lists decorations left out because they failed to load.
	Skipped []error

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Photos      int
	Bytes       int
	ComposeTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	CompositeHit bool // Whether the encoded composite came from cache
}

// Save writes the composite into dir under its Filename.
func (r *Result) Save(dir string) (string, error) {
	return export.Save(dir, r.Filename, r.PNG)
}
