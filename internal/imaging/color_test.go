package imaging

import (
	"image"
	"image/color"
	"testing"
)

// newSolid creates an RGBA image filled with c.
func newSolid(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect paints r on img with c.
func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// newMask creates an Alpha mask with r set to opaque.
func newMask(width, height int, r image.Rectangle) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, width, height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return m
}

func TestDescribeColor(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		hex  string
		hsl  HSLColor
	}{
		{"white", color.RGBA{255, 255, 255, 255}, "#ffffff", HSLColor{0, 0, 100}},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", HSLColor{0, 0, 0}},
		{"red", color.RGBA{255, 0, 0, 255}, "#ff0000", HSLColor{0, 100, 50}},
		{"green", color.RGBA{0, 255, 0, 255}, "#00ff00", HSLColor{120, 100, 50}},
		{"blue", color.RGBA{0, 0, 255, 128}, "#0000ff", HSLColor{240, 100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescribeColor(tt.c)
			if got.Hex != tt.hex {
				t.Errorf("Hex: got %s, want %s", got.Hex, tt.hex)
			}
			if got.HSL != tt.hsl {
				t.Errorf("HSL: got %+v, want %+v", got.HSL, tt.hsl)
			}
			if got.RGBA.A != tt.c.A {
				t.Errorf("alpha: got %d, want %d", got.RGBA.A, tt.c.A)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#fa8000")
	if err != nil {
		t.Fatalf("ParseHexColor failed: %v", err)
	}
	if c != (color.RGBA{250, 128, 0, 255}) {
		t.Errorf("got %+v", c)
	}

	if _, err := ParseHexColor("nope"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestWithinDistance(t *testing.T) {
	base := color.RGBA{100, 100, 100, 255}
	tests := []struct {
		name string
		c    color.RGBA
		want bool
	}{
		{"identical", base, true},
		{"distance 19", color.RGBA{119, 100, 100, 255}, true},
		{"distance exactly 20", color.RGBA{120, 100, 100, 255}, false},
		{"alpha ignored", color.RGBA{100, 100, 100, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinDistance(base, tt.c, 20); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLuminance(t *testing.T) {
	if got := Luminance(255, 255, 255); got < 254.99 || got > 255.01 {
		t.Errorf("white: got %v, want 255", got)
	}
	if got := Luminance(0, 0, 0); got != 0 {
		t.Errorf("black: got %v, want 0", got)
	}
	if got := Luminance(0, 255, 0); got < 149.6 || got > 149.7 {
		t.Errorf("green: got %v, want 149.685", got)
	}
}
