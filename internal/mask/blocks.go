package mask

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textclean/internal/detection"
)

// Blocks paints each cluster's bounds, shifted by offset and grown by pad,
// then one bridging rectangle that joins stacked lines of a text block.
//
// The bridging rectangle spans every cluster vertically (plus pad) and is
// centered on the mean cluster midpoint with the mean cluster width.
// Fractional edges round outward. All rectangles are clamped to the mask.
func Blocks(clusters []detection.Cluster, offset image.Point, width, height, pad int) (*image.Alpha, error) {
	if len(clusters) == 0 {
		return nil, ErrEmptyMask
	}

	m := image.NewAlpha(image.Rect(0, 0, width, height))
	bounds := m.Rect

	x0s := make([]float64, len(clusters))
	x1s := make([]float64, len(clusters))
	widths := make([]float64, len(clusters))
	minY, maxY := math.MaxInt, math.MinInt

	for i, c := range clusters {
		r := c.Bounds.Rect().Add(offset)
		fill(m, r.Inset(-pad).Intersect(bounds))

		x0s[i] = float64(r.Min.X)
		x1s[i] = float64(r.Max.X)
		widths[i] = float64(r.Dx())
		if r.Min.Y < minY {
			minY = r.Min.Y
		}
		if r.Max.Y > maxY {
			maxY = r.Max.Y
		}
	}

	center := (stat.Mean(x0s, nil) + stat.Mean(x1s, nil)) / 2
	half := stat.Mean(widths, nil) / 2
	bridge := image.Rect(
		int(math.Floor(center-half)), minY-pad,
		int(math.Ceil(center+half)), maxY+pad,
	)
	fill(m, bridge.Intersect(bounds))

	return m, nil
}

func fill(m *image.Alpha, r image.Rectangle) {
	if r.Empty() {
		return
	}
	draw.Draw(m, r, image.NewUniform(color.Alpha{A: 255}), image.Point{}, draw.Src)
}
