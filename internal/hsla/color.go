package hsla

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Epsilon is the per-component tolerance used by Color.Equal.
//
// Averages computed through prefix sums and atan2 carry rounding noise in the last
// few bits, so exact float comparison would make a one-pixel average differ from
// the pixel it came from.
const Epsilon = 1e-9

// maxCylinderDistance is the largest possible distance between two points of the
// HSL cylinder: opposite hues at full saturation (2) and black vs white (1).
var maxCylinderDistance = math.Sqrt(5)

// Color is a color in HSLA space. See the package documentation for ranges.
type Color struct {
	H float64 `json:"h"` // Hue: 0-360 degrees
	S float64 `json:"s"` // Saturation: 0-1
	L float64 `json:"l"` // Luminance: 0-1
	A float64 `json:"a"` // Alpha: 0-1
}

// New returns an opaque color with the given hue, saturation and luminance.
func New(h, s, l float64) Color {
	return Color{H: h, S: s, L: l, A: 1}
}

// Equal reports whether c and o are the same color within Epsilon.
// Hue is compared around the circle, so 359.9999999999 equals 0.
func (c Color) Equal(o Color) bool {
	dh := math.Abs(c.H - o.H)
	if dh > 180 {
		dh = 360 - dh
	}
	return dh <= Epsilon &&
		math.Abs(c.S-o.S) <= Epsilon &&
		math.Abs(c.L-o.L) <= Epsilon &&
		math.Abs(c.A-o.A) <= Epsilon
}

// String formats the color for logs and test failures.
func (c Color) String() string {
	return fmt.Sprintf("hsla(%.4f, %.4f, %.4f, %.4f)", c.H, c.S, c.L, c.A)
}

// Colorful returns the color as a go-colorful RGB value, clamped into gamut.
// Alpha is dropped.
func (c Color) Colorful() colorful.Color {
	return colorful.Hsl(c.H, c.S, c.L).Clamped()
}

// RGBA implements color.Color. The result is alpha-premultiplied.
func (c Color) RGBA() (r, g, b, a uint32) {
	rgb := c.Colorful()
	alpha := clamp01(c.A)
	r = uint32(rgb.R*alpha*0xffff + 0.5)
	g = uint32(rgb.G*alpha*0xffff + 0.5)
	b = uint32(rgb.B*alpha*0xffff + 0.5)
	a = uint32(alpha*0xffff + 0.5)
	return r, g, b, a
}

// FromColor converts any color.Color to HSLA.
//
// Fully transparent colors carry no hue information and convert to the zero
// Color (which has A == 0).
func FromColor(c color.Color) Color {
	if hc, ok := c.(Color); ok {
		return hc
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return Color{}
	}
	_, _, _, a := c.RGBA()
	h, s, l := cf.Hsl()
	return Color{H: h, S: s, L: l, A: float64(a) / 0xffff}
}

// Model converts colors to HSLA.
var Model color.Model = color.ModelFunc(func(c color.Color) color.Color {
	return FromColor(c)
})

// Metric measures how far apart two colors are. Larger means less similar.
type Metric func(a, b Color) float64

// Distance is the default Metric: Euclidean distance in the HSL cylinder
// (S·cos H, S·sin H, L), divided by √5 so the result lies in [0,1].
// Alpha is ignored.
func Distance(a, b Color) float64 {
	ax, ay := polar(a)
	bx, by := polar(b)
	dx, dy, dl := ax-bx, ay-by, a.L-b.L
	return math.Sqrt(dx*dx+dy*dy+dl*dl) / maxCylinderDistance
}

// PerceptualDistance is a Metric based on CIEDE2000 computed by go-colorful.
// Typical values for visibly different colors are around 0.05-0.2.
func PerceptualDistance(a, b Color) float64 {
	return a.Colorful().DistanceCIEDE2000(b.Colorful())
}

// MetricByName resolves a configured metric name.
//
// Supported names:
//   - "hsl" or "": Distance
//   - "ciede2000": PerceptualDistance
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", "hsl":
		return Distance, nil
	case "ciede2000":
		return PerceptualDistance, nil
	default:
		return nil, fmt.Errorf("unknown color metric: %s", name)
	}
}

func polar(c Color) (x, y float64) {
	rad := c.H * math.Pi / 180
	return c.S * math.Cos(rad), c.S * math.Sin(rad)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
