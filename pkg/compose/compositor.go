package compose

import (
	"context"
	stderrors "errors"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
	"github.com/matzehuels/photobooth/pkg/observability"
	"github.com/matzehuels/photobooth/pkg/raster"
)

// Defaults for asset loading.
const (
	DefaultAssetTimeout  = 5 * time.Second
	DefaultMaxConcurrent = 4
)

// Decoration kinds reported in hooks and skipped errors.
const (
	KindOverlay = "overlay"
	KindSticker = "sticker"
)

// Compositor turns a full slot collection and a decoration set into an
// encoded image.
type Compositor struct {
	Loader        decor.AssetLoader
	Geometry      Geometry
	AssetTimeout  time.Duration
	MaxConcurrent int
	// Now supplies the branding date when a Request leaves it zero.
	Now func() time.Time
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithLoader sets the asset loader for overlays and stickers.
func WithLoader(l decor.AssetLoader) Option {
	return func(c *Compositor) { c.Loader = l }
}

// WithGeometry overrides DefaultGeometry.
func WithGeometry(g Geometry) Option {
	return func(c *Compositor) { c.Geometry = g }
}

// WithAssetTimeout bounds each overlay or sticker load.
func WithAssetTimeout(d time.Duration) Option {
	return func(c *Compositor) { c.AssetTimeout = d }
}

// WithClock sets the branding date source.
func WithClock(now func() time.Time) Option {
	return func(c *Compositor) { c.Now = now }
}

// New returns a Compositor that only knows the built-in stickers unless a
// loader is given.
func New(opts ...Option) *Compositor {
	c := &Compositor{
		Loader:        decor.Builtin{},
		Geometry:      DefaultGeometry,
		AssetTimeout:  DefaultAssetTimeout,
		MaxConcurrent: DefaultMaxConcurrent,
		Now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AssetVersions returns the loader's version of the overlay and of each
// sticker in r, in draw order.
func (c *Compositor) AssetVersions(r decor.Resolved) []string {
	var out []string
	if r.Overlay != "" {
		out = append(out, decor.AssetVersion(c.Loader, r.Overlay))
	}
	for _, st := range r.Stickers {
		out = append(out, decor.AssetVersion(c.Loader, st.Ref))
	}
	return out
}

// Request is a fully specified composite.
type Request struct {
	Images []image.Image
	Layout layout.Descriptor
	Decor  decor.Set
	// Date is printed in the branding band. Zero means Compositor.Now.
	Date time.Time
}

// Result is an encoded composite.
type Result struct {
	PNG    []byte
	Image  image.Image
	Width  int
	Height int
	// Skipped holds one DECORATION_LOAD_FAILURE per decoration that was left
	// out of the composite.
	Skipped  []error
	Duration time.Duration
}

// Compose renders the slots in d. Every slot must be populated.
func (c *Compositor) Compose(ctx context.Context, slots *raster.Slots, d layout.Descriptor, set decor.Set) (*Result, error) {
	images, err := slots.Images()
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Images: images, Layout: d, Decor: set})
}

// ComposeImages is Compose for images that are not held in slots.
func (c *Compositor) ComposeImages(ctx context.Context, images []image.Image, d layout.Descriptor, set decor.Set) (*Result, error) {
	return c.Do(ctx, Request{Images: images, Layout: d, Decor: set})
}

// Do validates the decorations, loads assets, renders and encodes.
// Invalid decorations fail the call; decorations that fail to load are
// skipped and reported in Result.Skipped.
func (c *Compositor) Do(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	hooks := observability.Compose()
	hooks.OnComposeStart(ctx, req.Layout.ID, len(req.Images))
	defer func() {
		size := 0
		if res != nil {
			size = len(res.PNG)
		}
		hooks.OnComposeComplete(ctx, req.Layout.ID, size, time.Since(start), err)
	}()

	resolved, err := req.Decor.Resolve()
	if err != nil {
		return nil, err
	}
	if err := req.Layout.Validate(); err != nil {
		return nil, err
	}
	if len(req.Images) != req.Layout.PhotoCount {
		return nil, errors.New(errors.ErrCodeIncompleteSlots,
			"layout %q needs %d photos, got %d", req.Layout.ID, req.Layout.PhotoCount, len(req.Images))
	}

	in := Input{
		Images: req.Images,
		Layout: req.Layout,
		Decor:  resolved,
		Date:   req.Date,
	}
	if in.Date.IsZero() {
		in.Date = c.now()
	}

	w, h := c.canvasSize(in)
	skipped, err := c.loadAssets(ctx, &in, w, h)
	if err != nil {
		return nil, err
	}

	img, err := Render(in, c.geometry())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := Encode(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &Result{
		PNG:      data,
		Image:    img,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Skipped:  skipped,
		Duration: time.Since(start),
	}, nil
}

func (c *Compositor) canvasSize(in Input) (int, int) {
	if in.IsSingle() && len(in.Images) == 1 && in.Images[0] != nil {
		b := in.Images[0].Bounds()
		return b.Dx(), b.Dy()
	}
	return c.geometry().CanvasSize(in.Layout)
}

// loadAssets fetches the overlay and stickers concurrently. Each load gets
// its own timeout; a failed load is recorded and the slot left empty. Only
// cancellation of ctx itself fails the call.
func (c *Compositor) loadAssets(ctx context.Context, in *Input, w, h int) ([]error, error) {
	type job struct {
		kind, ref string
		w, h      int
	}

	var jobs []job
	if in.Decor.Overlay != "" {
		jobs = append(jobs, job{KindOverlay, in.Decor.Overlay, w, h})
	}
	size := decor.StickerSize(w, h)
	for _, s := range in.Decor.Stickers {
		jobs = append(jobs, job{KindSticker, s.Ref, size, size})
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	images := make([]image.Image, len(jobs))
	errs := make([]error, len(jobs))

	var eg errgroup.Group
	eg.SetLimit(max(c.MaxConcurrent, 1))
	for i, j := range jobs {
		eg.Go(func() error {
			images[i], errs[i] = c.loadAsset(ctx, j.ref, j.w, j.h)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Compose()
	var skipped []error
	next := 0
	for i, j := range jobs {
		if errs[i] != nil {
			err := errs[i]
			if !errors.Is(err, errors.ErrCodeDecorationLoad) {
				err = errors.Wrap(errors.ErrCodeDecorationLoad, err, "%s %q", j.kind, j.ref)
			}
			skipped = append(skipped, err)
			hooks.OnDecorationFailure(ctx, j.kind, j.ref, err)
		}
		switch j.kind {
		case KindOverlay:
			in.Overlay = images[i]
		case KindSticker:
			if images[i] != nil {
				in.Stickers = append(in.Stickers, PlacedSticker{
					Image:  images[i],
					Anchor: in.Decor.Stickers[next].Anchor,
				})
			}
			next++
		}
	}
	return skipped, nil
}

func (c *Compositor) loadAsset(ctx context.Context, ref string, w, h int) (image.Image, error) {
	if c.Loader == nil {
		return nil, errors.New(errors.ErrCodeDecorationLoad, "no asset loader for %q", ref)
	}
	timeout := c.AssetTimeout
	if timeout <= 0 {
		timeout = DefaultAssetTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	img, err := c.Loader.Load(actx, ref, w, h)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || actx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeDecorationLoad, errors.Wrap(errors.ErrCodeTimeout, err, "load %q", ref), "timed out after %s", timeout)
		}
		return nil, err
	}
	if img == nil {
		return nil, errors.New(errors.ErrCodeDecorationLoad, "loader returned no image for %q", ref)
	}
	return img, nil
}

func (c *Compositor) geometry() Geometry {
	if c.Geometry == (Geometry{}) {
		return DefaultGeometry
	}
	return c.Geometry
}

func (c *Compositor) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
