package decor

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/photobooth/pkg/errors"
)

// FilterFunc names a filter function.
type FilterFunc string

const (
	FuncGrayscale  FilterFunc = "grayscale"
	FuncSepia      FilterFunc = "sepia"
	FuncSaturate   FilterFunc = "saturate"
	FuncHueRotate  FilterFunc = "hue-rotate"
	FuncBrightness FilterFunc = "brightness"
	FuncContrast   FilterFunc = "contrast"
	FuncInvert     FilterFunc = "invert"
	FuncBlur       FilterFunc = "blur"
)

// FilterOp is one function in a filter chain. Amount is a fraction (1 = 100%)
// for color functions, degrees for hue-rotate, and pixels for blur.
type FilterOp struct {
	Func   FilterFunc
	Amount float64
}

// Filter is a parsed filter chain. The zero value is the identity filter.
type Filter struct {
	Ops []FilterOp
}

// FilterPreset is a named filter offered in the booth UI.
type FilterPreset struct {
	ID   string
	Name string
	Expr string
}

// FilterPresets lists the built-in filters.
var FilterPresets = []FilterPreset{
	{ID: "none", Name: "None", Expr: ""},
	{ID: "bw", Name: "B&W", Expr: "grayscale(100%)"},
	{ID: "sepia", Name: "Sepia", Expr: "sepia(100%)"},
	{ID: "vintage", Name: "Vintage", Expr: "sepia(50%) contrast(90%) brightness(90%)"},
	{ID: "warm", Name: "Warm", Expr: "saturate(150%) hue-rotate(-10deg)"},
	{ID: "cool", Name: "Cool", Expr: "saturate(110%) hue-rotate(20deg) brightness(105%)"},
	{ID: "contrast", Name: "Contrast", Expr: "contrast(140%) brightness(95%)"},
	{ID: "vivid", Name: "Vivid", Expr: "saturate(180%) contrast(110%)"},
}

// LookupFilterPreset returns the preset with the given ID.
func LookupFilterPreset(id string) (FilterPreset, bool) {
	for _, p := range FilterPresets {
		if p.ID == id {
			return p, true
		}
	}
	return FilterPreset{}, false
}

var filterCallRegex = regexp.MustCompile(`^([a-z-]+)\(\s*([^()]*?)\s*\)`)

// ParseFilter parses a filter expression. The empty string and "none" parse
// to the identity filter. A preset ID is accepted in place of an expression.
func ParseFilter(expr string) (Filter, error) {
	s := strings.TrimSpace(expr)
	if s == "" || s == "none" {
		return Filter{}, nil
	}
	if p, ok := LookupFilterPreset(s); ok {
		return ParseFilter(p.Expr)
	}

	var f Filter
	for s != "" {
		m := filterCallRegex.FindStringSubmatch(s)
		if m == nil {
			return Filter{}, errors.New(errors.ErrCodeInvalidDecoration, "invalid filter expression near %q", s)
		}
		op, err := parseOp(FilterFunc(m[1]), m[2])
		if err != nil {
			return Filter{}, err
		}
		f.Ops = append(f.Ops, op)
		s = strings.TrimSpace(s[len(m[0]):])
	}
	return f, nil
}

// Upper bounds on filter arguments. Blur cost grows with the radius, and
// color amounts past these limits saturate every channel anyway.
const (
	MaxFilterAmount = 10
	MaxBlurRadius   = 100
)

func parseOp(fn FilterFunc, arg string) (FilterOp, error) {
	op := FilterOp{Func: fn}
	switch fn {
	case FuncGrayscale, FuncSepia, FuncInvert, FuncSaturate, FuncBrightness, FuncContrast:
		v, err := parseAmount(arg, 1)
		if err != nil {
			return op, errors.Wrap(errors.ErrCodeInvalidDecoration, err, "%s(%s)", fn, arg)
		}
		if err := checkRange(fn, arg, v, MaxFilterAmount); err != nil {
			return op, err
		}
		if fn == FuncGrayscale || fn == FuncSepia || fn == FuncInvert {
			v = math.Min(v, 1)
		}
		op.Amount = v
	case FuncHueRotate:
		v, err := parseAngle(arg)
		if err != nil {
			return op, errors.Wrap(errors.ErrCodeInvalidDecoration, err, "%s(%s)", fn, arg)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return op, errors.New(errors.ErrCodeInvalidDecoration, "%s: non-finite angle %s", fn, arg)
		}
		op.Amount = math.Mod(v, 360)
	case FuncBlur:
		v, err := parseLength(arg)
		if err != nil {
			return op, errors.Wrap(errors.ErrCodeInvalidDecoration, err, "%s(%s)", fn, arg)
		}
		if err := checkRange(fn, arg, v, MaxBlurRadius); err != nil {
			return op, err
		}
		op.Amount = v
	default:
		return op, errors.New(errors.ErrCodeInvalidDecoration, "unknown filter function %q", fn)
	}
	return op, nil
}

func checkRange(fn FilterFunc, arg string, v, limit float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return errors.New(errors.ErrCodeInvalidDecoration, "%s: non-finite value %s", fn, arg)
	case v < 0:
		return errors.New(errors.ErrCodeInvalidDecoration, "%s: negative value %s", fn, arg)
	case v > limit:
		return errors.New(errors.ErrCodeInvalidDecoration, "%s: value %s exceeds %g", fn, arg, limit)
	}
	return nil
}

func parseAmount(arg string, def float64) (float64, error) {
	if arg == "" {
		return def, nil
	}
	if strings.HasSuffix(arg, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		return v / 100, err
	}
	return strconv.ParseFloat(arg, 64)
}

func parseAngle(arg string) (float64, error) {
	units := []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	if arg == "" {
		return 0, nil
	}
	for _, u := range units {
		if strings.HasSuffix(arg, u.suffix) {
			v, err := strconv.ParseFloat(strings.TrimSuffix(arg, u.suffix), 64)
			return v * u.scale, err
		}
	}
	return strconv.ParseFloat(arg, 64)
}

func parseLength(arg string) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSuffix(arg, "px"), 64)
}

// IsIdentity reports whether applying the filter leaves pixels unchanged.
func (f Filter) IsIdentity() bool { return len(f.Ops) == 0 }

// String returns the canonical expression, suitable as a cache key.
func (f Filter) String() string {
	parts := make([]string, len(f.Ops))
	for i, op := range f.Ops {
		switch op.Func {
		case FuncHueRotate:
			parts[i] = fmt.Sprintf("%s(%gdeg)", op.Func, op.Amount)
		case FuncBlur:
			parts[i] = fmt.Sprintf("%s(%gpx)", op.Func, op.Amount)
		default:
			parts[i] = fmt.Sprintf("%s(%g%%)", op.Func, op.Amount*100)
		}
	}
	return strings.Join(parts, " ")
}

// Apply returns a filtered copy of img. img is never modified.
func (f Filter) Apply(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for _, op := range f.Ops {
		if op.Func == FuncBlur {
			if op.Amount > 0 {
				out = imaging.Blur(out, op.Amount)
			}
			continue
		}
		m := op.matrix()
		out = imaging.AdjustFunc(out, m.apply)
	}
	return out
}

// colorMatrix maps (r, g, b, 1) to (r', g', b') in the 0..1 domain.
type colorMatrix [3][4]float64

func (m colorMatrix) apply(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	return color.NRGBA{
		R: channel(m[0][0]*r + m[0][1]*g + m[0][2]*b + m[0][3]),
		G: channel(m[1][0]*r + m[1][1]*g + m[1][2]*b + m[1][3]),
		B: channel(m[2][0]*r + m[2][1]*g + m[2][2]*b + m[2][3]),
		A: c.A,
	}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// matrix returns the Filter Effects color matrix for a color function.
func (op FilterOp) matrix() colorMatrix {
	a := op.Amount
	switch op.Func {
	case FuncGrayscale:
		i := 1 - a
		return colorMatrix{
			{0.2126 + 0.7874*i, 0.7152 - 0.7152*i, 0.0722 - 0.0722*i, 0},
			{0.2126 - 0.2126*i, 0.7152 + 0.2848*i, 0.0722 - 0.0722*i, 0},
			{0.2126 - 0.2126*i, 0.7152 - 0.7152*i, 0.0722 + 0.9278*i, 0},
		}
	case FuncSepia:
		i := 1 - a
		return colorMatrix{
			{0.393 + 0.607*i, 0.769 - 0.769*i, 0.189 - 0.189*i, 0},
			{0.349 - 0.349*i, 0.686 + 0.314*i, 0.168 - 0.168*i, 0},
			{0.272 - 0.272*i, 0.534 - 0.534*i, 0.131 + 0.869*i, 0},
		}
	case FuncSaturate:
		return colorMatrix{
			{0.213 + 0.787*a, 0.715 - 0.715*a, 0.072 - 0.072*a, 0},
			{0.213 - 0.213*a, 0.715 + 0.285*a, 0.072 - 0.072*a, 0},
			{0.213 - 0.213*a, 0.715 - 0.715*a, 0.072 + 0.928*a, 0},
		}
	case FuncHueRotate:
		rad := a * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		return colorMatrix{
			{0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928, 0},
			{0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283, 0},
			{0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072, 0},
		}
	case FuncBrightness:
		return colorMatrix{{a, 0, 0, 0}, {0, a, 0, 0}, {0, 0, a, 0}}
	case FuncContrast:
		o := 0.5 - 0.5*a
		return colorMatrix{{a, 0, 0, o}, {0, a, 0, o}, {0, 0, a, o}}
	case FuncInvert:
		s := 1 - 2*a
		return colorMatrix{{s, 0, 0, a}, {0, s, 0, a}, {0, 0, s, a}}
	}
	return colorMatrix{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}
}
