// Package hsla provides the hue/saturation/luminance/alpha color model used by the
// partitioning engine, together with a raster image of such colors.
//
// # Color Representation
//
// A Color stores four float64 components:
//   - H: hue in degrees, 0 <= H < 360 (0=red, 120=green, 240=blue)
//   - S: saturation, 0 (gray) to 1 (vivid)
//   - L: luminance, 0 (black) to 1 (white)
//   - A: alpha, 0 (transparent) to 1 (opaque)
//
// Conversions to and from Go's color.Color go through go-colorful, so any
// image.Image can be lifted into an *Image and any *Image can be handed to an
// encoder (it implements image.Image and draw.Image).
//
// # Distance
//
// Pruning needs a notion of "close enough" between two colors. Distance places a
// color in the HSL cylinder (S·cos H, S·sin H, L) and returns the Euclidean
// distance scaled into [0,1]. PerceptualDistance uses CIEDE2000 on the rendered
// RGB values instead. Both satisfy the Metric signature.
//
// # Coordinate System
//
// Images are indexed from (0,0) at the top-left corner, X to the right and Y down,
// exactly like the rest of the module.
package hsla
