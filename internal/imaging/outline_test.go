package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestOutline(t *testing.T) {
	img := createInMemoryImage(8, 8, color.NRGBA{255, 255, 255, 255})
	rects := []image.Rectangle{
		image.Rect(0, 0, 4, 8),
		image.Rect(4, 0, 8, 4),
		image.Rect(4, 4, 8, 8),
	}
	line := color.NRGBA{0, 0, 0, 255}

	out := Outline(img, rects, line)

	tests := []struct {
		name   string
		x, y   int
		onLine bool
	}{
		{"vertical border", 4, 2, true},
		{"vertical border lower", 4, 6, true},
		{"horizontal border", 6, 4, true},
		{"image top edge", 2, 0, false},
		{"image left edge", 0, 3, false},
		{"interior left", 2, 5, false},
		{"interior right", 6, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := out.NRGBAAt(tt.x, tt.y)
			black := c.R == 0 && c.G == 0 && c.B == 0
			if black != tt.onLine {
				t.Errorf("pixel (%d,%d): got %v, onLine=%v", tt.x, tt.y, c, tt.onLine)
			}
		})
	}

	// Source must be untouched
	if c := img.NRGBAAt(4, 2); c.R != 255 {
		t.Errorf("Outline modified its input: %v", c)
	}
}

func TestOutline_Translucent(t *testing.T) {
	img := createInMemoryImage(4, 4, color.NRGBA{0, 0, 255, 255})
	out := Outline(img, []image.Rectangle{image.Rect(0, 0, 2, 4), image.Rect(2, 0, 4, 4)}, DefaultOutlineColor)

	c := out.NRGBAAt(2, 1)
	if c.R == 0 || c.B == 0 {
		t.Errorf("translucent line should blend with blue, got %v", c)
	}
	if c.A != 255 {
		t.Errorf("alpha: got %d, want 255", c.A)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
