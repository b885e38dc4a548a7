package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion copies r out of img into an origin-anchored RGBA buffer.
//
// r is in img's coordinate space and must lie inside img.Bounds() with a
// positive width and height.
func CropRegion(img image.Image, r image.Rectangle) (*image.RGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return WorkingCopy(imaging.Crop(img, r)), nil
}

// ExtendRegion grows r by pad pixels on every side and clamps the result
// to bounds.
func ExtendRegion(r image.Rectangle, pad int, bounds image.Rectangle) image.Rectangle {
	return r.Inset(-pad).Intersect(bounds)
}
