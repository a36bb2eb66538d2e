package decor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/photobooth/pkg/cache"
	"github.com/matzehuels/photobooth/pkg/errors"
)

// AssetLoader fetches a decoration image. w and h are the size the image will
// be drawn at; vector sources are rasterized at that size, raster sources
// may be returned at their native size.
type AssetLoader interface {
	Load(ctx context.Context, ref string, w, h int) (image.Image, error)
}

// Versioner is implemented by loaders that can identify the current content
// of an asset without decoding it. Composite caches key on the version so an
// edited asset file is not served from a stale composite.
type Versioner interface {
	Version(ref string) string
}

// AssetVersion returns l's version of ref, or "" when l cannot tell.
func AssetVersion(l AssetLoader, ref string) string {
	if v, ok := l.(Versioner); ok {
		return v.Version(ref)
	}
	return ""
}

// Rasterizer converts SVG bytes to PNG bytes of exactly w x h.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, w, h int) ([]byte, error)
}

// =============================================================================
// rsvg-convert
// =============================================================================

// RSVGConvert rasterizes SVG by shelling out to rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVGConvert struct {
	// Binary overrides the executable name; empty means "rsvg-convert".
	Binary string
}

// Rasterize implements Rasterizer. Width and height are both fixed, so the
// SVG is stretched to fill the target.
func (r RSVGConvert) Rasterize(ctx context.Context, svg []byte, w, h int) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "rsvg-convert"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "SVG overlays require librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	cmd := exec.CommandContext(ctx, bin, "-f", "png", "-w", fmt.Sprint(w), "-h", fmt.Sprint(h))
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "rsvg-convert")
		}
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}

// =============================================================================
// Files
// =============================================================================

// FileLoader reads assets from a directory. SVG files are rasterized and the
// resulting PNG is cached by content hash and size.
type FileLoader struct {
	Dir        string
	Cache      cache.Cache
	Keyer      cache.Keyer
	Rasterizer Rasterizer
}

// NewFileLoader returns a loader for dir with a null cache and rsvg-convert.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{
		Dir:        dir,
		Cache:      cache.NewNullCache(),
		Keyer:      cache.NewDefaultKeyer(),
		Rasterizer: RSVGConvert{},
	}
}

// Load implements AssetLoader.
func (l *FileLoader) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	if err := errors.ValidateAssetRef(ref); err != nil {
		return nil, err
	}
	if l.Dir == "" {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no asset directory configured for %q", ref)
	}
	data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "asset %q", ref)
		}
		return nil, errors.Wrap(errors.ErrCodeDecorationLoad, err, "asset %q", ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(ref), ".svg") {
		data, err = l.rasterize(ctx, ref, data, w, h)
		if err != nil {
			return nil, err
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecorationLoad, err, "decode asset %q", ref)
	}
	return img, nil
}

// Version returns the content hash of the asset file, or "" when it is
// missing or unreadable.
func (l *FileLoader) Version(ref string) string {
	if l.Dir == "" || errors.ValidateAssetRef(ref) != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(ref)))
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func (l *FileLoader) rasterize(ctx context.Context, ref string, svg []byte, w, h int) ([]byte, error) {
	if l.Rasterizer == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no SVG rasterizer for %q", ref)
	}
	c, keyer := l.Cache, l.Keyer
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.AssetKey(ref, cache.AssetKeyOpts{SourceHash: cache.Hash(svg), Width: w, Height: h})
	png, _, err := cache.GetOrCompute(ctx, c, key, cache.KeyTypeAsset, cache.AssetTTL, func() ([]byte, error) {
		return l.Rasterizer.Rasterize(ctx, svg, w, h)
	})
	return png, err
}

// =============================================================================
// Chains
// =============================================================================

// Chain tries loaders in order and returns the first success.
type Chain []AssetLoader

// Load implements AssetLoader. When every loader fails the errors are joined.
func (c Chain) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	var errs []error
	for _, l := range c {
		img, err := l.Load(ctx, ref, w, h)
		if err == nil {
			return img, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, errors.New(errors.ErrCodeDecorationLoad, "no loader for %q", ref)
	}
	return nil, stderrors.Join(errs...)
}

// Version joins the versions of every loader in the chain.
func (c Chain) Version(ref string) string {
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = AssetVersion(l, ref)
	}
	return strings.Join(parts, "|")
}

// DefaultLoader reads from dir and falls back to built-in vector stickers.
func DefaultLoader(dir string, c cache.Cache, keyer cache.Keyer) AssetLoader {
	fl := NewFileLoader(dir)
	if c != nil {
		fl.Cache = c
	}
	if keyer != nil {
		fl.Keyer = keyer
	}
	return Chain{fl, Builtin{}}
}
