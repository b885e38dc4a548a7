package imaging

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestCropRegion(t *testing.T) {
	img := newSolid(100, 100, color.White)
	fillRect(img, image.Rect(50, 0, 100, 50), color.RGBA{255, 0, 0, 255})

	crop, err := CropRegion(img, image.Rect(40, 10, 60, 30))
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if crop.Rect != image.Rect(0, 0, 20, 20) {
		t.Fatalf("crop bounds: got %v, want origin-anchored 20x20", crop.Rect)
	}
	if got := crop.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("left half: got %+v, want white", got)
	}
	if got := crop.RGBAAt(15, 5); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("right half: got %+v, want red", got)
	}

	// The crop owns its pixels.
	crop.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	if got := img.RGBAAt(40, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("source modified through crop: %+v", got)
	}
}

func TestCropRegion_Errors(t *testing.T) {
	img := newSolid(100, 100, color.White)

	tests := []struct {
		name    string
		r       image.Rectangle
		wantErr string
	}{
		{"outside bounds", image.Rect(90, 90, 110, 110), "outside image bounds"},
		{"negative origin", image.Rect(-5, 0, 10, 10), "outside image bounds"},
		{"empty", image.Rect(10, 10, 10, 20), "invalid crop region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CropRegion(img, tt.r)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExtendRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	tests := []struct {
		name string
		r    image.Rectangle
		pad  int
		want image.Rectangle
	}{
		{"interior", image.Rect(10, 10, 20, 20), 2, image.Rect(8, 8, 22, 22)},
		{"clamped top-left", image.Rect(1, 0, 20, 20), 2, image.Rect(0, 0, 22, 22)},
		{"clamped bottom-right", image.Rect(80, 80, 99, 100), 2, image.Rect(78, 78, 100, 100)},
		{"zero pad", image.Rect(10, 10, 20, 20), 0, image.Rect(10, 10, 20, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtendRegion(tt.r, tt.pad, bounds); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
