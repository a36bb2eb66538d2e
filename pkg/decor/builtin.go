package decor

import (
	"context"
	"image"
	"math"
	"path"
	"strings"

	"github.com/fogleman/gg"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// Builtin draws vector versions of the stars, hearts, and sparkle stickers.
// It is the fallback when the asset directory lacks the sticker files.
type Builtin struct{}

var builtinStickers = map[string]func(dc *gg.Context, s float64){
	"stars":   drawStars,
	"hearts":  drawHearts,
	"sparkle": drawSparkle,
}

// Load implements AssetLoader. ref may be a sticker ID or its asset ref.
func (Builtin) Load(ctx context.Context, ref string, w, h int) (image.Image, error) {
	name := strings.TrimSuffix(path.Base(ref), path.Ext(ref))
	draw, ok := builtinStickers[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeDecorationLoad, "no built-in drawing for %q", ref)
	}
	size := min(w, h)
	if size <= 0 {
		return nil, errors.New(errors.ErrCodeDecorationLoad, "invalid sticker size %dx%d", w, h)
	}
	dc := gg.NewContext(size, size)
	draw(dc, float64(size))
	return dc.Image(), nil
}

// Version implements Versioner. Built-in drawings only change between
// releases, and cache keys are already scoped by release.
func (Builtin) Version(ref string) string {
	name := strings.TrimSuffix(path.Base(ref), path.Ext(ref))
	if _, ok := builtinStickers[name]; ok {
		return "builtin:" + name
	}
	return ""
}

// starPath traces a five-pointed star.
func starPath(dc *gg.Context, cx, cy, outer float64) {
	inner := outer * 0.45
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

func drawStars(dc *gg.Context, s float64) {
	for _, st := range []struct{ x, y, r float64 }{
		{0.38, 0.40, 0.30},
		{0.78, 0.24, 0.16},
		{0.74, 0.74, 0.20},
	} {
		starPath(dc, st.x*s, st.y*s, st.r*s)
		dc.SetHexColor("#ffd700")
		dc.FillPreserve()
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(math.Max(1, s/64))
		dc.Stroke()
	}
}

// heartPath traces a heart centered on (cx, cy) with width 2r.
func heartPath(dc *gg.Context, cx, cy, r float64) {
	top := cy - r*0.35
	dc.MoveTo(cx, cy+r*0.9)
	dc.CubicTo(cx-r*1.3, cy+r*0.1, cx-r*0.9, top-r*0.9, cx, top)
	dc.CubicTo(cx+r*0.9, top-r*0.9, cx+r*1.3, cy+r*0.1, cx, cy+r*0.9)
	dc.ClosePath()
}

func drawHearts(dc *gg.Context, s float64) {
	for _, ht := range []struct {
		x, y, r float64
		hex     string
	}{
		{0.40, 0.45, 0.28, "#ff69b4"},
		{0.76, 0.70, 0.18, "#ff9a9e"},
	} {
		heartPath(dc, ht.x*s, ht.y*s, ht.r*s)
		dc.SetHexColor(ht.hex)
		dc.FillPreserve()
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(math.Max(1, s/64))
		dc.Stroke()
	}
}

// sparklePath traces a four-pointed glint with concave sides.
func sparklePath(dc *gg.Context, cx, cy, r float64) {
	k := r * 0.18
	dc.MoveTo(cx, cy-r)
	dc.QuadraticTo(cx+k, cy-k, cx+r, cy)
	dc.QuadraticTo(cx+k, cy+k, cx, cy+r)
	dc.QuadraticTo(cx-k, cy+k, cx-r, cy)
	dc.QuadraticTo(cx-k, cy-k, cx, cy-r)
	dc.ClosePath()
}

func drawSparkle(dc *gg.Context, s float64) {
	sparklePath(dc, s*0.45, s*0.5, s*0.4)
	dc.SetHexColor("#fff6a8")
	dc.Fill()
	sparklePath(dc, s*0.8, s*0.2, s*0.15)
	dc.SetHexColor("#ffffff")
	dc.Fill()
}
