package cleanup

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// CompositeMasked replaces every pixel of dst under the mask (alpha > 0)
// with fill, without blending. It returns the mask recolored to fill:
// opaque fill where masked, transparent elsewhere.
//
// # Errors
//
//   - Returns ErrCompositing if dst or m is nil
//   - Returns ErrCompositing if m and dst differ in size; dst is untouched
func CompositeMasked(dst *image.RGBA, m *image.Alpha, fill color.RGBA) (*image.NRGBA, error) {
	if dst == nil || m == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrCompositing)
	}
	db, mb := dst.Bounds(), m.Bounds()
	if db.Dx() != mb.Dx() || db.Dy() != mb.Dy() {
		return nil, fmt.Errorf("%w: mask is %dx%d, image is %dx%d",
			ErrCompositing, mb.Dx(), mb.Dy(), db.Dx(), db.Dy())
	}

	opaque := color.RGBA{R: fill.R, G: fill.G, B: fill.B, A: 255}
	preview := image.NewNRGBA(image.Rect(0, 0, db.Dx(), db.Dy()))
	for y := 0; y < db.Dy(); y++ {
		for x := 0; x < db.Dx(); x++ {
			if m.AlphaAt(mb.Min.X+x, mb.Min.Y+y).A == 0 {
				continue
			}
			dst.SetRGBA(db.Min.X+x, db.Min.Y+y, opaque)
			preview.SetNRGBA(x, y, color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: 255})
		}
	}
	return preview, nil
}

// CompositeSolid replaces every pixel of dst with fill, forced opaque.
// Running it again with the same fill leaves dst unchanged.
//
// # Errors
//
//   - Returns ErrCompositing if dst is nil
func CompositeSolid(dst *image.RGBA, fill color.RGBA) error {
	if dst == nil {
		return fmt.Errorf("%w: nil buffer", ErrCompositing)
	}
	opaque := color.RGBA{R: fill.R, G: fill.G, B: fill.B, A: 255}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opaque), image.Point{}, draw.Src)
	return nil
}
