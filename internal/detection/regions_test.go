package detection

import (
	"image"
	"testing"
)

func TestDropEnclosing(t *testing.T) {
	outer := Coords{Left: 0, Top: 0, Width: 200, Height: 200}
	inner := Coords{Left: 50, Top: 50, Width: 40, Height: 40}
	other := Coords{Left: 300, Top: 10, Width: 50, Height: 50}

	kept := DropEnclosing([]Coords{outer, inner, other})

	if len(kept) != 2 {
		t.Fatalf("kept: got %d, want 2", len(kept))
	}
	if kept[0] != inner || kept[1] != other {
		t.Errorf("kept: got %+v, want inner then other", kept)
	}
}

func TestDropEnclosing_Identical(t *testing.T) {
	r := Coords{Left: 10, Top: 10, Width: 20, Height: 20}
	if kept := DropEnclosing([]Coords{r, r}); len(kept) != 0 {
		t.Errorf("identical regions should both be dropped, got %+v", kept)
	}
}

func TestDropEnclosing_Overlapping(t *testing.T) {
	a := Coords{Left: 0, Top: 0, Width: 100, Height: 100}
	b := Coords{Left: 50, Top: 50, Width: 100, Height: 100}
	if kept := DropEnclosing([]Coords{a, b}); len(kept) != 2 {
		t.Errorf("partial overlap must keep both, got %d", len(kept))
	}
}

func TestBBox_Helpers(t *testing.T) {
	b := BBox{X0: 10, Y0: 20, X1: 40, Y1: 30}

	if b.Width() != 30 || b.Height() != 10 {
		t.Errorf("size: got %dx%d, want 30x10", b.Width(), b.Height())
	}
	if b.Rect() != image.Rect(10, 20, 40, 30) {
		t.Errorf("Rect: got %v", b.Rect())
	}
	if BBoxFromRect(b.Rect()) != b {
		t.Errorf("BBoxFromRect did not invert Rect")
	}

	u := b.Union(BBox{X0: 0, Y0: 25, X1: 20, Y1: 50})
	want := BBox{X0: 0, Y0: 20, X1: 40, Y1: 50}
	if u != want {
		t.Errorf("Union: got %+v, want %+v", u, want)
	}
}

func TestCoords_Rect(t *testing.T) {
	c := Coords{Left: 5, Top: 6, Width: 10, Height: 20}
	r := c.Rect()
	if r != image.Rect(5, 6, 15, 26) {
		t.Errorf("Rect: got %v", r)
	}
	if CoordsFromRect(r) != c {
		t.Errorf("CoordsFromRect did not invert Rect")
	}
}
