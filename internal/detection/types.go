package detection

import "image"

// BBox is an axis-aligned box in crop-local pixel coordinates.
//
// (X0, Y0) is the inclusive top-left corner and (X1, Y1) the exclusive
// bottom-right corner, matching the word boxes Tesseract reports.
type BBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Width returns X1 - X0.
func (b BBox) Width() int { return b.X1 - b.X0 }

// Height returns Y1 - Y0.
func (b BBox) Height() int { return b.Y1 - b.Y0 }

// Rect converts the box to an image.Rectangle.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1, b.Y1)
}

// Union returns the smallest box containing both a and b.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: minInt(b.X0, o.X0),
		Y0: minInt(b.Y0, o.Y0),
		X1: maxInt(b.X1, o.X1),
		Y1: maxInt(b.Y1, o.Y1),
	}
}

// BBoxFromRect converts an image.Rectangle to a BBox.
func BBoxFromRect(r image.Rectangle) BBox {
	return BBox{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}
}

// Detection is one OCR word result.
type Detection struct {
	// Text is the recognized text, untrimmed.
	Text string `json:"text"`

	// Confidence is the OCR confidence on a 0-100 scale.
	Confidence float64 `json:"confidence"`

	// BBox locates the word inside the crop.
	BBox BBox `json:"bbox"`
}

// Coords positions a crop inside its source page.
type Coords struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the coordinates to a page-space rectangle.
func (c Coords) Rect() image.Rectangle {
	return image.Rect(c.Left, c.Top, c.Left+c.Width, c.Top+c.Height)
}

// CoordsFromRect converts a page-space rectangle to Coords.
func CoordsFromRect(r image.Rectangle) Coords {
	return Coords{Left: r.Min.X, Top: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
