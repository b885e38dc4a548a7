package mask

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func paperWithInk(w, h int, inks ...image.Rectangle) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	for _, r := range inks {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				g.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return g
}

func TestPolygon_RectangularInk(t *testing.T) {
	ink := image.Rect(10, 12, 30, 20)
	bin := paperWithInk(40, 40, ink)

	m, err := Polygon(bin, bin.Bounds(), 40, 40, DefaultOptions())
	if err != nil {
		t.Fatalf("Polygon failed: %v", err)
	}
	if got := covered(m); got != ink {
		t.Errorf("covered area: got %v, want %v", got, ink)
	}
	if got := countCovered(m); got != ink.Dx()*ink.Dy() {
		t.Errorf("covered pixels: got %d, want %d", got, ink.Dx()*ink.Dy())
	}
}

func TestPolygon_LinesWithinGapMerge(t *testing.T) {
	// Two lines 6 rows apart form one block; the outline spans the gap.
	bin := paperWithInk(60, 60,
		image.Rect(10, 10, 50, 14),
		image.Rect(10, 20, 50, 24),
	)

	m, err := Polygon(bin, bin.Bounds(), 60, 60, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := m.AlphaAt(30, 17).A; got != 255 {
		t.Errorf("gap between lines: got %d, want 255", got)
	}
	if got, want := covered(m), image.Rect(10, 10, 50, 24); got != want {
		t.Errorf("covered area: got %v, want %v", got, want)
	}
}

func TestPolygon_BlocksJoinAcrossGap(t *testing.T) {
	// Lines 26 rows apart fall in different blocks but share one outline.
	bin := paperWithInk(60, 60,
		image.Rect(10, 10, 50, 14),
		image.Rect(10, 40, 50, 44),
	)

	rows := scanInkRows(bin, bin.Bounds(), DefaultOptions())
	if rows[0].block == rows[len(rows)-1].block {
		t.Fatal("lines should be in separate blocks")
	}

	m, err := Polygon(bin, bin.Bounds(), 60, 60, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for y := 10; y < 44; y++ {
		if got := m.AlphaAt(30, y).A; got != 255 {
			t.Fatalf("outline broken at (30,%d): got %d, want 255", y, got)
		}
	}
	if got, want := covered(m), image.Rect(10, 10, 50, 44); got != want {
		t.Errorf("covered area: got %v, want %v", got, want)
	}
}

func TestPolygon_RectLimitsScan(t *testing.T) {
	bin := paperWithInk(60, 60,
		image.Rect(10, 10, 20, 20),
		image.Rect(40, 40, 50, 50),
	)

	m, err := Polygon(bin, image.Rect(0, 0, 30, 30), 60, 60, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := covered(m), image.Rect(10, 10, 20, 20); got != want {
		t.Errorf("covered area: got %v, want %v", got, want)
	}
}

func TestPolygon_Empty(t *testing.T) {
	tests := []struct {
		name string
		bin  *image.Gray
		rect image.Rectangle
	}{
		{"no ink", paperWithInk(20, 20), image.Rect(0, 0, 20, 20)},
		{"rect outside image", paperWithInk(20, 20, image.Rect(5, 5, 10, 10)), image.Rect(30, 30, 40, 40)},
		{"empty rect", paperWithInk(20, 20, image.Rect(5, 5, 10, 10)), image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Polygon(tt.bin, tt.rect, 20, 20, DefaultOptions())
			if !errors.Is(err, ErrEmptyMask) {
				t.Errorf("got %v, want ErrEmptyMask", err)
			}
		})
	}
}

func TestScanInkRows_Blocks(t *testing.T) {
	bin := paperWithInk(40, 60,
		image.Rect(5, 5, 20, 7),
		image.Rect(5, 30, 25, 31),
	)

	rows := scanInkRows(bin, bin.Bounds(), DefaultOptions())
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	if rows[0].block != 0 || rows[1].block != 0 || rows[2].block != 1 {
		t.Errorf("blocks: got %d %d %d, want 0 0 1", rows[0].block, rows[1].block, rows[2].block)
	}
	if rows[2].minX != 5 || rows[2].maxX != 24 {
		t.Errorf("extent: got %d..%d, want 5..24", rows[2].minX, rows[2].maxX)
	}
}
