package hsla

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrEmptyImage is returned when an image with zero width or height is supplied
// where at least one pixel is required.
var ErrEmptyImage = errors.New("image has zero width or height")

// Image is a raster of HSLA colors with its origin at (0,0).
//
// Image implements image.Image and draw.Image, so it can be passed directly to
// encoders such as png.Encode or imaging.Save.
type Image struct {
	Width  int
	Height int
	// Pix holds the pixels in row-major order: (x,y) is at Pix[y*Width+x].
	Pix []Color
}

// NewImage allocates a width x height image of zero (transparent black) colors.
func NewImage(width, height int) *Image {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("hsla: negative image size %dx%d", width, height))
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]Color, width*height),
	}
}

// FromImage converts any image.Image into an HSLA image.
//
// The source bounds are translated so the result always starts at (0,0).
//
// # Errors
//
//   - Returns ErrEmptyImage if the source has no pixels.
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, ErrEmptyImage
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}
	if hi, ok := src.(*Image); ok {
		return hi.Clone(), nil
	}
	img := NewImage(b.Dx(), b.Dy())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Pix[y*img.Width+x] = FromColor(src.At(x+b.Min.X, y+b.Min.Y))
		}
	}
	return img, nil
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	c := &Image{Width: m.Width, Height: m.Height, Pix: make([]Color, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return Model }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image. Points outside the image return the zero Color.
func (m *Image) At(x, y int) color.Color {
	if !m.inBounds(x, y) {
		return Color{}
	}
	return m.Pix[y*m.Width+x]
}

// Set implements draw.Image. Points outside the image are ignored.
func (m *Image) Set(x, y int, c color.Color) {
	if !m.inBounds(x, y) {
		return
	}
	m.Pix[y*m.Width+x] = FromColor(c)
}

// HSLAAt returns the pixel at (x,y). It panics if the point is outside the image.
func (m *Image) HSLAAt(x, y int) Color {
	if !m.inBounds(x, y) {
		panic(fmt.Sprintf("hsla: point (%d,%d) outside %dx%d image", x, y, m.Width, m.Height))
	}
	return m.Pix[y*m.Width+x]
}

// SetHSLA stores c at (x,y). It panics if the point is outside the image.
func (m *Image) SetHSLA(x, y int, c Color) {
	if !m.inBounds(x, y) {
		panic(fmt.Sprintf("hsla: point (%d,%d) outside %dx%d image", x, y, m.Width, m.Height))
	}
	m.Pix[y*m.Width+x] = c
}

// Equal reports whether both images have the same size and every pair of
// corresponding pixels is Color.Equal.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i := range m.Pix {
		if !m.Pix[i].Equal(o.Pix[i]) {
			return false
		}
	}
	return true
}

func (m *Image) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}
