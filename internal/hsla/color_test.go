package hsla

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestFromColor_KnownColors(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
		want  Color
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, Color{H: 0, S: 1, L: 0.5, A: 1}},
		{"pure green", color.RGBA{0, 255, 0, 255}, Color{H: 120, S: 1, L: 0.5, A: 1}},
		{"pure blue", color.RGBA{0, 0, 255, 255}, Color{H: 240, S: 1, L: 0.5, A: 1}},
		{"white", color.RGBA{255, 255, 255, 255}, Color{H: 0, S: 0, L: 1, A: 1}},
		{"black", color.RGBA{0, 0, 0, 255}, Color{H: 0, S: 0, L: 0, A: 1}},
		{"transparent", color.RGBA{0, 0, 0, 0}, Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromColor(tt.color)
			if !got.Equal(tt.want) {
				t.Errorf("FromColor(%v): got %v, want %v", tt.color, got, tt.want)
			}
		})
	}
}

func TestColor_RGBARoundTrip(t *testing.T) {
	in := color.NRGBA{R: 200, G: 40, B: 90, A: 255}
	c := FromColor(in)
	got := color.NRGBAModel.Convert(c).(color.NRGBA)
	if got != in {
		t.Errorf("round trip: got %v, want %v", got, in)
	}
}

func TestColor_EqualWrapsHue(t *testing.T) {
	a := Color{H: 0, S: 1, L: 0.5, A: 1}
	b := Color{H: 360 - 1e-12, S: 1, L: 0.5, A: 1}
	if !a.Equal(b) {
		t.Error("hues on either side of 0 should be equal")
	}
	c := Color{H: 1, S: 1, L: 0.5, A: 1}
	if a.Equal(c) {
		t.Error("hues 1 degree apart should not be equal")
	}
}

func TestDistance(t *testing.T) {
	red := New(0, 1, 0.5)
	cyan := New(180, 1, 0.5)
	black := New(0, 0, 0)
	white := New(0, 0, 1)

	if d := Distance(red, red); d != 0 {
		t.Errorf("Distance(red, red): got %v, want 0", d)
	}
	if d := Distance(red, cyan); math.Abs(d-2/math.Sqrt(5)) > 1e-12 {
		t.Errorf("Distance(red, cyan): got %v, want %v", d, 2/math.Sqrt(5))
	}
	if d := Distance(black, white); math.Abs(d-1/math.Sqrt(5)) > 1e-12 {
		t.Errorf("Distance(black, white): got %v, want %v", d, 1/math.Sqrt(5))
	}
	if Distance(red, cyan) != Distance(cyan, red) {
		t.Error("Distance should be symmetric")
	}
}

func TestMetricByName(t *testing.T) {
	for _, name := range []string{"", "hsl", "ciede2000"} {
		m, err := MetricByName(name)
		if err != nil {
			t.Errorf("MetricByName(%q): %v", name, err)
			continue
		}
		if d := m(New(30, 0.5, 0.5), New(30, 0.5, 0.5)); d > 1e-9 {
			t.Errorf("MetricByName(%q) on equal colors: got %v, want 0", name, d)
		}
	}
	if _, err := MetricByName("manhattan"); err == nil {
		t.Error("MetricByName should reject unknown names")
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 13, 12))
	src.Set(10, 10, color.NRGBA{255, 0, 0, 255})
	src.Set(12, 11, color.NRGBA{0, 0, 255, 255})

	img, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if img.Width != 3 || img.Height != 2 {
		t.Fatalf("size: got %dx%d, want 3x2", img.Width, img.Height)
	}
	if got := img.HSLAAt(0, 0); !got.Equal(New(0, 1, 0.5)) {
		t.Errorf("pixel (0,0): got %v, want red", got)
	}
	if got := img.HSLAAt(2, 1); !got.Equal(New(240, 1, 0.5)) {
		t.Errorf("pixel (2,1): got %v, want blue", got)
	}
}

func TestFromImage_Empty(t *testing.T) {
	if _, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 5))); err == nil {
		t.Error("FromImage should reject a zero-width image")
	}
	if _, err := FromImage(nil); err == nil {
		t.Error("FromImage should reject nil")
	}
}

func TestImage_Equal(t *testing.T) {
	a := NewImage(2, 2)
	b := NewImage(2, 2)
	if !a.Equal(b) {
		t.Error("two zero images should be equal")
	}
	b.SetHSLA(1, 1, New(90, 1, 0.5))
	if a.Equal(b) {
		t.Error("images with a differing pixel should not be equal")
	}
	if a.Equal(NewImage(2, 3)) {
		t.Error("images of different sizes should not be equal")
	}
}

func TestImage_SetOutOfBoundsIgnored(t *testing.T) {
	img := NewImage(1, 1)
	img.Set(5, 5, color.White)
	if got := img.At(5, 5); got != (Color{}) {
		t.Errorf("At outside bounds: got %v, want zero color", got)
	}
}
