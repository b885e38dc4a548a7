package mask

import (
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/textclean/internal/detection"
)

func TestBlocks_SingleCluster(t *testing.T) {
	m, err := Blocks([]detection.Cluster{cluster(20, 30, 60, 50)}, image.Point{}, 100, 100, 5)
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}

	// Padded cluster; the bridging rectangle lies inside it.
	want := image.Rect(15, 25, 65, 55)
	if got := covered(m); got != want {
		t.Errorf("covered area: got %v, want %v", got, want)
	}
	if got := countCovered(m); got != want.Dx()*want.Dy() {
		t.Errorf("covered pixels: got %d, want %d", got, want.Dx()*want.Dy())
	}
}

func TestBlocks_Bridge(t *testing.T) {
	clusters := []detection.Cluster{
		cluster(10, 10, 30, 20),
		cluster(60, 60, 90, 70),
	}
	m, err := Blocks(clusters, image.Point{}, 100, 100, 5)
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}

	tests := []struct {
		name string
		p    image.Point
		want uint8
	}{
		{"first cluster", image.Pt(7, 7), 255},
		{"second cluster", image.Pt(92, 72), 255},
		// Bridge: x from mean X0 (35) to mean X1 (60), y from 5 to 75.
		{"bridge middle", image.Pt(40, 40), 255},
		{"bridge left edge", image.Pt(35, 40), 255},
		{"left of bridge", image.Pt(34, 40), 0},
		{"right of bridge", image.Pt(60, 40), 0},
		{"below everything", image.Pt(40, 80), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.AlphaAt(tt.p.X, tt.p.Y).A; got != tt.want {
				t.Errorf("alpha at %v: got %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestBlocks_FractionalBridgeRoundsOutward(t *testing.T) {
	clusters := []detection.Cluster{
		cluster(20, 10, 41, 20), // width 21
		cluster(20, 30, 40, 40), // width 20
	}
	m, err := Blocks(clusters, image.Point{}, 100, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Mean X1 is 40.5, so column 40 is covered between the clusters.
	if got := m.AlphaAt(40, 25).A; got != 255 {
		t.Errorf("alpha at (40,25): got %d, want 255", got)
	}
	if got := m.AlphaAt(41, 25).A; got != 0 {
		t.Errorf("alpha at (41,25): got %d, want 0", got)
	}
}

func TestBlocks_ClampAndOffset(t *testing.T) {
	m, err := Blocks([]detection.Cluster{cluster(0, 0, 10, 10)}, image.Pt(2, 2), 30, 30, 5)
	if err != nil {
		t.Fatal(err)
	}
	// Shifted to (2,2)-(12,12), padded and clamped to the mask.
	if got, want := covered(m), image.Rect(0, 0, 17, 17); got != want {
		t.Errorf("covered area: got %v, want %v", got, want)
	}
}

func TestBlocks_Empty(t *testing.T) {
	if _, err := Blocks(nil, image.Point{}, 10, 10, 5); !errors.Is(err, ErrEmptyMask) {
		t.Errorf("got %v, want ErrEmptyMask", err)
	}
}
