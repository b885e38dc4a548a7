package imaging

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit components.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult reports one color in the formats tools and logs print.
type ColorResult struct {
	Hex  string    `json:"hex"`  // "#rrggbb", alpha excluded
	RGBA RGBAColor `json:"rgba"` // 8-bit components with alpha
	HSL  HSLColor  `json:"hsl"`
}

// DescribeColor converts c into a ColorResult.
//
// Hex and HSL are computed by go-colorful from the straight RGB components;
// alpha is carried only in RGBA.
func DescribeColor(c color.RGBA) ColorResult {
	cf := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	h, s, l := cf.Hsl()

	return ColorResult{
		Hex:  cf.Hex(),
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := cf.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Luminance returns the ITU-R BT.601 luma of an 8-bit RGB triple:
// 0.299*R + 0.587*G + 0.114*B.
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// distanceSq is the squared Euclidean distance between the RGB parts of
// two colors. Comparing squared integers keeps threshold tests exact.
func distanceSq(a, b color.RGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// WithinDistance reports whether the RGB distance between a and b is
// strictly below threshold.
func WithinDistance(a, b color.RGBA, threshold int) bool {
	return distanceSq(a, b) < threshold*threshold
}

// similarPerChannel reports whether every RGB channel differs by at most tol.
func similarPerChannel(a, b color.RGBA, tol int) bool {
	return absInt(int(a.R)-int(b.R)) <= tol &&
		absInt(int(a.G)-int(b.G)) <= tol &&
		absInt(int(a.B)-int(b.B)) <= tol
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
