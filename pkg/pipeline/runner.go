package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobooth/pkg/cache"
	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/observability"
	"github.com/matzehuels/photobooth/pkg/raster"
)

// Runner encapsulates composite execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	Compositor *compose.Compositor
	Logger     *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses DefaultKeyer, and a nil compositor uses compose.New().
func NewRunner(c cache.Cache, keyer cache.Keyer, comp *compose.Compositor, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if comp == nil {
		comp = compose.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:      c,
		Keyer:      keyer,
		Compositor: comp,
		Logger:     logger,
	}
}

// Execute composes a full slot collection. Every slot must hold a raster.
func (r *Runner) Execute(ctx context.Context, slots *raster.Slots, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.LayoutFallback() {
		opts.Logger.Warn("unknown layout, using default", "layout", opts.Layout)
	}

	d := opts.Descriptor()
	if slots.Len() != d.PhotoCount {
		return nil, errors.New(errors.ErrCodeIncompleteSlots,
			"layout %q needs %d photos, slots hold %d", d.ID, d.PhotoCount, slots.Len())
	}
	images, err := slots.Images()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Filename: opts.Filename(),
		Layout:   d,
	}
	result.Stats.Photos = d.PhotoCount

	resolved, err := opts.Decor.Resolve()
	if err != nil {
		return nil, err
	}
	assets := r.Compositor.AssetVersions(resolved)
	key := r.Keyer.CompositeKey(InputHash(slots), opts.CompositeKeyOpts(d, r.Compositor.Geometry, assets))
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, cache.KeyTypeComposite)
				result.PNG = data
				result.Width, result.Height = cfg.Width, cfg.Height
				result.Stats.Bytes = len(data)
				result.CacheInfo.CompositeHit = true
				opts.Logger.Debug("composite from cache", "layout", d.ID)
				return result, nil
			}
			// Undecodable entry: fall through and recompose.
		}
		hooks.OnCacheMiss(ctx, cache.KeyTypeComposite)
	}

	start := time.Now()
	res, err := r.Compositor.Do(ctx, compose.Request{
		Images: images,
		Layout: d,
		Decor:  opts.Decor,
		Date:   opts.Date,
	})
	if err != nil {
		return nil, err
	}
	result.PNG = res.PNG
	result.Width, result.Height = res.Width, res.Height
	result.Skipped = res.Skipped
	result.Stats.Bytes = len(res.PNG)
	result.Stats.ComposeTime = time.Since(start)

	for _, skipped := range res.Skipped {
		opts.Logger.Warn("decoration skipped", "err", errors.UserMessage(skipped))
	}
	opts.Logger.Info("composed",
		"layout", d.ID,
		"photos", d.PhotoCount,
		"width", result.Width,
		"height", result.Height,
		"duration", result.Stats.ComposeTime)

	if len(res.Skipped) == 0 {
		if err := r.Cache.Set(ctx, key, res.PNG, cache.CompositeTTL); err == nil {
			hooks.OnCacheSet(ctx, cache.KeyTypeComposite, len(res.PNG))
		}
	}
	return result, nil
}

// InputHash identifies the rasters in slots by ID, in slot order. Raster
// pixels never change after capture, so the ID stands in for the content.
func InputHash(slots *raster.Slots) string {
	rs := slots.Rasters()
	chunks := make([][]byte, len(rs))
	for i, r := range rs {
		if r != nil {
			chunks[i] = r.ID[:]
		}
	}
	return cache.HashChunks(chunks...)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
