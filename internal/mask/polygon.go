package mask

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"

	"github.com/ironsheep/textclean/internal/imaging"
)

// inkRow is the horizontal ink extent of one row.
type inkRow struct {
	y, minX, maxX int
	block         int
}

// Polygon traces the ink of a binarized crop inside rect and fills a
// smoothed outline around it.
//
// # Algorithm
//
// Every row of rect records the leftmost and rightmost pixel darker than
// InkThreshold; rows without ink are skipped. Consecutive rows further than
// MaxRowGap apart start a new block.
//
// One closed outline is drawn over all rows: down the right edges, across
// the bottom of the last row, and back up the left edges. Neighbouring rows
// are joined by cubic Béziers whose control points sit dy/2 from each end
// inside a block and dy/3 across blocks. Pixels at least half covered by
// the outline become 255, all others 0.
//
// Coordinates are relative to the binarized image's Min corner. The mask is
// width x height. ErrEmptyMask is returned when rect misses the image or
// holds no ink.
func Polygon(bin image.Image, rect image.Rectangle, width, height int, opts Options) (*image.Alpha, error) {
	b := bin.Bounds()
	rect = rect.Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, ErrEmptyMask
	}

	rows := scanInkRows(bin, rect, opts)
	if len(rows) == 0 {
		return nil, ErrEmptyMask
	}

	z := vector.NewRasterizer(width, height)
	traceOutline(z, rows)

	m := image.NewAlpha(image.Rect(0, 0, width, height))
	z.Draw(m, m.Bounds(), image.Opaque, image.Point{})

	for i, a := range m.Pix {
		if a >= 128 {
			m.Pix[i] = 255
		} else {
			m.Pix[i] = 0
		}
	}
	return m, nil
}

// scanInkRows returns the ink extent of every inked row, in coordinates
// relative to bin's Min corner.
func scanInkRows(bin image.Image, rect image.Rectangle, opts Options) []inkRow {
	origin := bin.Bounds().Min
	rows := make([]inkRow, 0)
	block := 0

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		minX, maxX := -1, -1
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if !isInk(bin.At(x, y), opts.InkThreshold) {
				continue
			}
			if minX < 0 {
				minX = x
			}
			maxX = x
		}
		if minX < 0 {
			continue
		}

		ry := y - origin.Y
		if n := len(rows); n > 0 && ry-rows[n-1].y > opts.MaxRowGap {
			block++
		}
		rows = append(rows, inkRow{
			y:     ry,
			minX:  minX - origin.X,
			maxX:  maxX - origin.X,
			block: block,
		})
	}
	return rows
}

func isInk(c color.Color, threshold float64) bool {
	r, g, b, _ := c.RGBA()
	return imaging.Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8)) < threshold
}

func traceOutline(z *vector.Rasterizer, rows []inkRow) {
	first, last := rows[0], rows[len(rows)-1]
	mid := func(r inkRow) float32 { return float32(r.y) + 0.5 }
	right := func(r inkRow) float32 { return float32(r.maxX + 1) }
	left := func(r inkRow) float32 { return float32(r.minX) }

	z.MoveTo(left(first), float32(first.y))
	z.LineTo(right(first), float32(first.y))
	z.LineTo(right(first), mid(first))

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		k := controlOffset(prev, cur)
		z.CubeTo(
			right(prev), mid(prev)+k,
			right(cur), mid(cur)-k,
			right(cur), mid(cur),
		)
	}

	z.LineTo(right(last), float32(last.y+1))
	z.LineTo(left(last), float32(last.y+1))
	z.LineTo(left(last), mid(last))

	for i := len(rows) - 1; i > 0; i-- {
		cur, prev := rows[i], rows[i-1]
		k := controlOffset(prev, cur)
		z.CubeTo(
			left(cur), mid(cur)-k,
			left(prev), mid(prev)+k,
			left(prev), mid(prev),
		)
	}

	z.ClosePath()
}

// controlOffset is the vertical distance of a Bézier control point from its
// end point: half the gap inside a block, a third across blocks.
func controlOffset(prev, cur inkRow) float32 {
	dy := float32(cur.y - prev.y)
	if prev.block != cur.block {
		return dy / 3
	}
	return dy / 2
}
