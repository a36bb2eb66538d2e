package decor

import (
	"image/color"
	"math"
	"math/rand"
	"sort"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// FillKind is the category of a frame color.
type FillKind string

const (
	KindSolid   FillKind = "solid"
	KindLinear  FillKind = "linear"
	KindConic   FillKind = "conic"
	KindSpecial FillKind = "special"
)

// Stop is a gradient color stop. Pos is in 0..1; a negative Pos is spaced
// evenly between its neighbors.
type Stop struct {
	Hex string
	Pos float64
}

// FrameColor is a catalog entry for the composite background.
type FrameColor struct {
	ID    string
	Name  string
	Kind  FillKind
	Stops []Stop
	// Angle is the CSS gradient angle in degrees (0 points up, clockwise).
	Angle float64
	// Sparkle scatters glints over the gradient.
	Sparkle bool
}

func even(hexes ...string) []Stop {
	out := make([]Stop, len(hexes))
	for i, h := range hexes {
		out[i] = Stop{Hex: h, Pos: -1}
	}
	return out
}

// DefaultFrameColor is used when no frame color is selected.
const DefaultFrameColor = "white"

// FrameColors lists the built-in frame colors.
var FrameColors = []FrameColor{
	{ID: "rainbow", Name: "Rainbow", Kind: KindConic, Stops: even("#ff0000", "#ffff00", "#00ff00", "#00ffff", "#0000ff", "#ff00ff", "#ff0000")},
	{ID: "white", Name: "White", Kind: KindSolid, Stops: even("#ffffff")},
	{ID: "black", Name: "Black", Kind: KindSolid, Stops: even("#1a1a1a")},
	{ID: "pink-light", Name: "Light Pink", Kind: KindSolid, Stops: even("#ffb6c1")},
	{ID: "pink", Name: "Pink", Kind: KindSolid, Stops: even("#ff69b4")},
	{ID: "lavender", Name: "Lavender", Kind: KindSolid, Stops: even("#e6e6fa")},
	{ID: "purple", Name: "Purple", Kind: KindSolid, Stops: even("#9370db")},
	{ID: "sky", Name: "Sky Blue", Kind: KindSolid, Stops: even("#87ceeb")},
	{ID: "blue", Name: "Blue", Kind: KindSolid, Stops: even("#4169e1")},
	{ID: "mint", Name: "Mint", Kind: KindSolid, Stops: even("#98fb98")},
	{ID: "green", Name: "Green", Kind: KindSolid, Stops: even("#228b22")},
	{ID: "peach", Name: "Peach", Kind: KindSolid, Stops: even("#ffdab9")},
	{ID: "coral", Name: "Coral", Kind: KindSolid, Stops: even("#ff7f50")},
	{ID: "yellow", Name: "Yellow", Kind: KindSolid, Stops: even("#ffd700")},
	{ID: "cream", Name: "Cream", Kind: KindSolid, Stops: even("#fffdd0")},
	{ID: "gray", Name: "Gray", Kind: KindSolid, Stops: even("#808080")},
	{ID: "gradient-pink", Name: "Pink Gradient", Kind: KindLinear, Angle: 135, Stops: even("#ff9a9e", "#fecfef")},
	{ID: "gradient-purple", Name: "Purple Gradient", Kind: KindLinear, Angle: 135, Stops: even("#a18cd1", "#fbc2eb")},
	{ID: "gradient-blue", Name: "Blue Gradient", Kind: KindLinear, Angle: 135, Stops: even("#667eea", "#764ba2")},
	{ID: "glitter", Name: "Glitter", Kind: KindSpecial, Angle: 45, Sparkle: true,
		Stops: []Stop{{Hex: "#c0c0c0", Pos: 0.25}, {Hex: "#ffffff", Pos: 0.5}, {Hex: "#c0c0c0", Pos: 0.75}}},
	{ID: "holographic", Name: "Holographic", Kind: KindSpecial, Angle: 135, Stops: even("#ff9a9e", "#fad0c4", "#a8edea", "#fed6e3")},
}

// LookupFrameColor returns the catalog entry with the given ID.
func LookupFrameColor(id string) (FrameColor, bool) {
	for _, c := range FrameColors {
		if c.ID == id {
			return c, true
		}
	}
	return FrameColor{}, false
}

// =============================================================================
// Resolved fills
// =============================================================================

// ResolvedStop is a parsed gradient stop.
type ResolvedStop struct {
	Color colorful.Color
	Pos   float64
}

// Fill is a concrete background paint. Special styles resolve to a linear
// gradient, optionally with sparkle.
type Fill struct {
	Kind    FillKind
	Stops   []ResolvedStop
	Angle   float64
	Sparkle bool
}

// LightThreshold is the CIE L* (0..1) at or above which a fill counts as
// light and gets dark ink.
const LightThreshold = 0.7

// ResolveFill turns a frame color ID or a "#rgb"/"#rrggbb" hex color into a
// Fill. The empty string resolves to DefaultFrameColor.
func ResolveFill(idOrHex string) (Fill, error) {
	if idOrHex == "" {
		idOrHex = DefaultFrameColor
	}
	fc, ok := LookupFrameColor(idOrHex)
	if !ok {
		if err := errors.ValidateHexColor(idOrHex); err != nil {
			return Fill{}, errors.New(errors.ErrCodeInvalidDecoration, "unknown frame color %q", idOrHex)
		}
		fc = FrameColor{ID: idOrHex, Kind: KindSolid, Stops: even(idOrHex)}
	}
	return fc.Resolve()
}

// Resolve parses the stops of a catalog entry.
func (fc FrameColor) Resolve() (Fill, error) {
	if len(fc.Stops) == 0 {
		return Fill{}, errors.New(errors.ErrCodeInvalidDecoration, "frame color %q has no stops", fc.ID)
	}
	stops := make([]ResolvedStop, len(fc.Stops))
	for i, s := range fc.Stops {
		c, err := colorful.Hex(s.Hex)
		if err != nil {
			return Fill{}, errors.Wrap(errors.ErrCodeInvalidDecoration, err, "frame color %q", fc.ID)
		}
		stops[i] = ResolvedStop{Color: c, Pos: s.Pos}
	}
	spaceStops(stops)

	kind := fc.Kind
	if kind == KindSpecial {
		kind = KindLinear
	}
	if kind == KindSolid {
		stops = stops[:1]
	}
	return Fill{Kind: kind, Stops: stops, Angle: fc.Angle, Sparkle: fc.Sparkle}, nil
}

// spaceStops assigns positions to auto stops: the first and last default to
// 0 and 1, interior runs are spaced evenly between fixed neighbors.
func spaceStops(stops []ResolvedStop) {
	n := len(stops)
	if n == 1 {
		if stops[0].Pos < 0 {
			stops[0].Pos = 0
		}
		return
	}
	if stops[0].Pos < 0 {
		stops[0].Pos = 0
	}
	if stops[n-1].Pos < 0 {
		stops[n-1].Pos = 1
	}
	for i := 1; i < n; {
		if stops[i].Pos >= 0 {
			i++
			continue
		}
		j := i
		for stops[j].Pos < 0 {
			j++
		}
		lo, hi := stops[i-1].Pos, stops[j].Pos
		for k := i; k < j; k++ {
			stops[k].Pos = lo + (hi-lo)*float64(k-i+1)/float64(j-i+1)
		}
		i = j
	}
}

// At samples the fill's stops at t in 0..1.
func (f Fill) At(t float64) colorful.Color {
	s := f.Stops
	if t <= s[0].Pos || len(s) == 1 {
		return s[0].Color
	}
	if t >= s[len(s)-1].Pos {
		return s[len(s)-1].Color
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].Pos >= t })
	a, b := s[i-1], s[i]
	if b.Pos == a.Pos {
		return b.Color
	}
	return a.Color.BlendRgb(b.Color, (t-a.Pos)/(b.Pos-a.Pos))
}

// Mean is the average color over the gradient parameter.
func (f Fill) Mean() colorful.Color {
	const samples = 64
	var r, g, b float64
	for i := 0; i < samples; i++ {
		c := f.At((float64(i) + 0.5) / samples)
		r, g, b = r+c.R, g+c.G, b+c.B
	}
	return colorful.Color{R: r / samples, G: g / samples, B: b / samples}
}

// IsLight reports whether the fill's mean lightness is at least
// LightThreshold.
func (f Fill) IsLight() bool {
	l, _, _ := f.Mean().Lab()
	return l >= LightThreshold
}

// Ink returns the branding text color for the fill: dark gray on light fills,
// near-white on dark or saturated ones.
func (f Fill) Ink() color.Color {
	if f.IsLight() {
		return color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	}
	return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe6}
}

// Paint covers the whole context with the fill.
func (f Fill) Paint(dc *gg.Context) {
	w, h := float64(dc.Width()), float64(dc.Height())
	switch f.Kind {
	case KindLinear:
		dc.SetFillStyle(f.linear(w, h))
	case KindConic:
		dc.SetFillStyle(conic{fill: f, cx: w / 2, cy: h / 2})
	default:
		dc.SetColor(nrgba(f.Stops[0].Color))
	}
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if f.Sparkle {
		sparkle(dc)
	}
}

// linear builds a gradient along the CSS gradient line for the angle: through
// the center, long enough that the corners land on 0 and 1.
func (f Fill) linear(w, h float64) gg.Gradient {
	rad := f.Angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
	cx, cy := w/2, h/2
	g := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
	for _, s := range f.Stops {
		g.AddColorStop(s.Pos, nrgba(s.Color))
	}
	return g
}

// conic is a gg.Pattern sweeping clockwise from the top around the center.
type conic struct {
	fill   Fill
	cx, cy float64
}

func (c conic) ColorAt(x, y int) color.Color {
	a := math.Atan2(float64(x)+0.5-c.cx, -(float64(y) + 0.5 - c.cy))
	if a < 0 {
		a += 2 * math.Pi
	}
	return nrgba(c.fill.At(a / (2 * math.Pi)))
}

// sparkleSeed fixes glint placement so equal inputs render equal bytes.
const sparkleSeed = 20240214

func sparkle(dc *gg.Context) {
	w, h := float64(dc.Width()), float64(dc.Height())
	rng := rand.New(rand.NewSource(sparkleSeed))
	n := int(w * h / 2500)
	if n > 400 {
		n = 400
	}
	for i := 0; i < n; i++ {
		x, y := rng.Float64()*w, rng.Float64()*h
		r := 0.8 + rng.Float64()*1.8
		dc.SetRGBA(1, 1, 1, 0.55+rng.Float64()*0.45)
		dc.DrawCircle(x, y, r)
		dc.Fill()
		if i%5 == 0 {
			dc.SetLineWidth(0.8)
			dc.DrawLine(x-3*r, y, x+3*r, y)
			dc.DrawLine(x, y-3*r, x, y+3*r)
			dc.Stroke()
		}
	}
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
