package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// Smooth applies a Gaussian blur of the given radius before partitioning.
//
// Photographs carry per-pixel noise that scatters hues across histogram
// buckets; a light blur (radius 1-2) lets pruning merge far more rectangles at
// the same tolerance. A radius <= 0 returns img unchanged.
func Smooth(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}
