// Package stats precomputes summed-area tables over an HSLA image so that the
// average color and the hue entropy of any axis-aligned rectangle can be queried
// in constant time.
//
// Rectangles are given by their upper-left and lower-right corners, both
// inclusive. A query with a corner outside the image, or with the corners in the
// wrong order, is a programming error and panics.
package stats

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/image-partition-mcp/internal/hsla"
)

// Buckets is the number of hue histogram buckets; each covers 10 degrees.
const Buckets = 36

const bucketWidth = 360 / Buckets

// Stats holds cumulative sums over the rectangle (0,0)-(x,y) for every pixel.
//
// Every table is stored flat in row-major order, (x,y) at index y*width+x. The
// histogram table stores Buckets consecutive counts per cell. Counts are kept
// as float64 (exact for any realistic image) so that gonum/floats can do the
// vector inclusion-exclusion.
//
// A Stats value is immutable after New and safe for concurrent readers.
type Stats struct {
	width  int
	height int

	sumHueX []float64 // cos(hue)
	sumHueY []float64 // sin(hue)
	sumSat  []float64
	sumLum  []float64
	hist    []float64
}

// New builds the summed-area tables for img.
//
// # Errors
//
//   - Returns hsla.ErrEmptyImage if img is nil or has no pixels.
func New(img *hsla.Image) (*Stats, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, hsla.ErrEmptyImage
	}
	w, h := img.Width, img.Height
	s := &Stats{
		width:   w,
		height:  h,
		sumHueX: make([]float64, w*h),
		sumHueY: make([]float64, w*h),
		sumSat:  make([]float64, w*h),
		sumLum:  make([]float64, w*h),
		hist:    make([]float64, w*h*Buckets),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := img.Pix[y*w+x]
			rad := p.H * math.Pi / 180
			i := y*w + x

			s.sumHueX[i] = math.Cos(rad) + s.cumulative(s.sumHueX, x, y)
			s.sumHueY[i] = math.Sin(rad) + s.cumulative(s.sumHueY, x, y)
			s.sumSat[i] = p.S + s.cumulative(s.sumSat, x, y)
			s.sumLum[i] = p.L + s.cumulative(s.sumLum, x, y)

			cell := s.histAt(x, y)
			if y > 0 {
				floats.Add(cell, s.histAt(x, y-1))
			}
			if x > 0 {
				floats.Add(cell, s.histAt(x-1, y))
			}
			if x > 0 && y > 0 {
				floats.Sub(cell, s.histAt(x-1, y-1))
			}
			cell[bucket(p.H)]++
		}
	}
	return s, nil
}

// Width returns the width of the source image.
func (s *Stats) Width() int { return s.width }

// Height returns the height of the source image.
func (s *Stats) Height() int { return s.height }

// RectArea returns the number of pixels in the rectangle ul-lr.
func (s *Stats) RectArea(ul, lr image.Point) int {
	s.check(ul, lr)
	return (lr.X - ul.X + 1) * (lr.Y - ul.Y + 1)
}

// Avg returns the average color over the rectangle ul-lr.
//
// Saturation and luminance are arithmetic means. Hue is the circular mean: the
// mean of the unit vectors (cos H, sin H) converted back with atan2, so that 350
// and 10 average to 0 rather than 180. Alpha is always 1.
func (s *Stats) Avg(ul, lr image.Point) hsla.Color {
	area := float64(s.RectArea(ul, lr))

	hueX := s.rectSum(s.sumHueX, ul, lr) / area
	hueY := s.rectSum(s.sumHueY, ul, lr) / area
	hue := math.Atan2(hueY, hueX) * 180 / math.Pi
	if hue < 0 {
		hue += 360
	} else if hue >= 360 {
		hue -= 360
	}

	return hsla.Color{
		H: hue,
		S: s.rectSum(s.sumSat, ul, lr) / area,
		L: s.rectSum(s.sumLum, ul, lr) / area,
		A: 1,
	}
}

// Histogram returns the hue histogram of the rectangle ul-lr: Buckets counts,
// bucket k holding hues in [10k, 10k+10).
func (s *Stats) Histogram(ul, lr image.Point) []float64 {
	s.check(ul, lr)
	distn := make([]float64, Buckets)
	floats.Add(distn, s.histAt(lr.X, lr.Y))
	if ul.Y > 0 {
		floats.Sub(distn, s.histAt(lr.X, ul.Y-1))
	}
	if ul.X > 0 {
		floats.Sub(distn, s.histAt(ul.X-1, lr.Y))
	}
	if ul.X > 0 && ul.Y > 0 {
		floats.Add(distn, s.histAt(ul.X-1, ul.Y-1))
	}
	return distn
}

// Entropy returns the base-2 Shannon entropy of the rectangle's hue histogram.
// A single-hue rectangle has entropy 0; empty buckets contribute nothing.
func (s *Stats) Entropy(ul, lr image.Point) float64 {
	area := float64(s.RectArea(ul, lr))
	var entropy float64
	for _, n := range s.Histogram(ul, lr) {
		if n > 0 {
			p := n / area
			entropy += p * math.Log2(p)
		}
	}
	return -entropy
}

// WeightedSumEntropy scores a split of one rectangle into a (aUL-aLR) and b
// (bUL-bLR): the entropy of each half weighted by its share of the total area.
// The halves must tile the rectangle aUL-bLR. Lower is more homogeneous.
func (s *Stats) WeightedSumEntropy(aUL, aLR, bUL, bLR image.Point) float64 {
	total := float64(s.RectArea(aUL, bLR))
	aArea := float64(s.RectArea(aUL, aLR))
	bArea := float64(s.RectArea(bUL, bLR))
	return s.Entropy(aUL, aLR)*aArea/total + s.Entropy(bUL, bLR)*bArea/total
}

// cumulative returns the above + left - above-left part of the recurrence at
// (x,y); out-of-range neighbours count as 0.
func (s *Stats) cumulative(table []float64, x, y int) float64 {
	var v float64
	if y > 0 {
		v += table[(y-1)*s.width+x]
	}
	if x > 0 {
		v += table[y*s.width+x-1]
	}
	if x > 0 && y > 0 {
		v -= table[(y-1)*s.width+x-1]
	}
	return v
}

// rectSum is the 4-term inclusion-exclusion query, degrading to fewer terms at
// the top and left edges.
func (s *Stats) rectSum(table []float64, ul, lr image.Point) float64 {
	v := table[lr.Y*s.width+lr.X]
	if ul.Y > 0 {
		v -= table[(ul.Y-1)*s.width+lr.X]
	}
	if ul.X > 0 {
		v -= table[lr.Y*s.width+ul.X-1]
	}
	if ul.X > 0 && ul.Y > 0 {
		v += table[(ul.Y-1)*s.width+ul.X-1]
	}
	return v
}

func (s *Stats) histAt(x, y int) []float64 {
	i := (y*s.width + x) * Buckets
	return s.hist[i : i+Buckets : i+Buckets]
}

func (s *Stats) check(ul, lr image.Point) {
	if ul.X < 0 || ul.Y < 0 || lr.X >= s.width || lr.Y >= s.height || ul.X > lr.X || ul.Y > lr.Y {
		panic(fmt.Sprintf("stats: invalid rectangle %v-%v for %dx%d image", ul, lr, s.width, s.height))
	}
}

func bucket(hue float64) int {
	k := int(hue / bucketWidth)
	if k < 0 {
		return 0
	}
	if k >= Buckets {
		return Buckets - 1
	}
	return k
}
