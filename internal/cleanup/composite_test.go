package cleanup

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	paint(img, 0, w*h, c)
	return img
}

func TestCompositeMasked(t *testing.T) {
	dst := solid(10, 10, color.RGBA{0, 0, 0, 255})
	m := emptyMask(10, 10)
	m.SetAlpha(2, 3, color.Alpha{A: 255})
	m.SetAlpha(4, 4, color.Alpha{A: 1})
	fill := color.RGBA{200, 100, 50, 255}

	preview, err := CompositeMasked(dst, m, fill)
	if err != nil {
		t.Fatalf("CompositeMasked failed: %v", err)
	}

	tests := []struct {
		p       image.Point
		painted bool
	}{
		{image.Pt(2, 3), true},
		{image.Pt(4, 4), true},
		{image.Pt(0, 0), false},
	}
	for _, tt := range tests {
		got := dst.RGBAAt(tt.p.X, tt.p.Y)
		pv := preview.NRGBAAt(tt.p.X, tt.p.Y)
		if tt.painted {
			if got != fill {
				t.Errorf("pixel %v: got %+v, want fill", tt.p, got)
			}
			if pv != (color.NRGBA{200, 100, 50, 255}) {
				t.Errorf("preview %v: got %+v", tt.p, pv)
			}
		} else {
			if got != (color.RGBA{0, 0, 0, 255}) {
				t.Errorf("pixel %v repainted: %+v", tt.p, got)
			}
			if pv.A != 0 {
				t.Errorf("preview %v should be transparent: %+v", tt.p, pv)
			}
		}
	}
}

func TestCompositeMasked_Errors(t *testing.T) {
	dst := solid(10, 10, color.RGBA{0, 0, 0, 255})
	m := image.NewAlpha(image.Rect(0, 0, 12, 10))
	for i := range m.Pix {
		m.Pix[i] = 255
	}

	if _, err := CompositeMasked(dst, m, color.RGBA{255, 255, 255, 255}); !errors.Is(err, ErrCompositing) {
		t.Errorf("size mismatch: got %v, want ErrCompositing", err)
	}
	if dst.RGBAAt(0, 0) != (color.RGBA{0, 0, 0, 255}) {
		t.Error("dst modified on error")
	}
	if _, err := CompositeMasked(nil, m, color.RGBA{}); !errors.Is(err, ErrCompositing) {
		t.Errorf("nil image: got %v", err)
	}
	if _, err := CompositeMasked(dst, nil, color.RGBA{}); !errors.Is(err, ErrCompositing) {
		t.Errorf("nil mask: got %v", err)
	}
}

func TestCompositeSolid(t *testing.T) {
	dst := solid(6, 4, color.RGBA{1, 2, 3, 255})
	fill := color.RGBA{9, 8, 7, 255}

	if err := CompositeSolid(dst, fill); err != nil {
		t.Fatalf("CompositeSolid failed: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			if dst.RGBAAt(x, y) != fill {
				t.Fatalf("pixel (%d,%d): got %+v", x, y, dst.RGBAAt(x, y))
			}
		}
	}

	if err := CompositeSolid(nil, fill); !errors.Is(err, ErrCompositing) {
		t.Errorf("nil image: got %v", err)
	}
}

func TestComposite_Idempotent(t *testing.T) {
	fill := color.RGBA{240, 236, 220, 255}
	m := emptyMask(12, 8)
	for y := 2; y < 6; y++ {
		for x := 3; x < 9; x++ {
			m.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}

	tests := []struct {
		name string
		run  func(dst *image.RGBA) error
	}{
		{"solid", func(dst *image.RGBA) error {
			return CompositeSolid(dst, fill)
		}},
		{"masked", func(dst *image.RGBA) error {
			_, err := CompositeMasked(dst, m, fill)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := solid(12, 8, color.RGBA{30, 60, 90, 255})
			dst.SetRGBA(4, 3, color.RGBA{0, 0, 0, 255})

			if err := tt.run(dst); err != nil {
				t.Fatalf("first pass failed: %v", err)
			}
			once := append([]uint8(nil), dst.Pix...)

			if err := tt.run(dst); err != nil {
				t.Fatalf("second pass failed: %v", err)
			}
			for i := range once {
				if dst.Pix[i] != once[i] {
					t.Fatalf("byte %d changed on second pass: %d -> %d", i, once[i], dst.Pix[i])
				}
			}
		})
	}
}
