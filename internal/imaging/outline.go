package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/disintegration/imaging"
)

// DefaultOutlineColor is used when an outline color cannot be parsed.
var DefaultOutlineColor = color.NRGBA{255, 0, 0, 128}

// Outline draws the borders between rectangles over a copy of img.
//
// Rectangles are relative to the top-left corner of img. Each rectangle
// contributes its top and left edge, except along the image border, so adjacent
// rectangles share a single 1-pixel line. The line color is blended over the
// image, so a translucent color leaves the content visible.
func Outline(img image.Image, rects []image.Rectangle, lineColor color.Color) *image.NRGBA {
	dst := imaging.Clone(img)
	bounds := dst.Bounds()
	src := &image.Uniform{C: lineColor}

	for _, r := range rects {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		if r.Min.Y > bounds.Min.Y {
			draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), src, image.Point{}, draw.Over)
		}
		if r.Min.X > bounds.Min.X {
			// Skip the corner pixel already covered by the top edge.
			top := r.Min.Y
			if r.Min.Y > bounds.Min.Y {
				top++
			}
			draw.Draw(dst, image.Rect(r.Min.X, top, r.Min.X+1, r.Max.Y), src, image.Point{}, draw.Over)
		}
	}
	return dst
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
