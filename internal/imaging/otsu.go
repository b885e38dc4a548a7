package imaging

import (
	"image"
	"image/color"
	"math"
)

// LuminanceHistogram counts the rounded BT.601 luminance of every pixel.
func LuminanceHistogram(img image.Image) [256]int {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[lumIndex(img.At(x, y))]++
		}
	}
	return hist
}

// OtsuThreshold returns the luminance threshold that best separates the
// pixels of img into two classes. Pixels with luminance below the threshold
// form the lower class.
//
// # Algorithm
//
// For each candidate cut t the lower class holds bins 0..t and the upper
// class bins t+1..255. The between-class variance wB*wF*(mB-mF)^2 is
// maximized; only a strictly larger variance replaces the current best, so
// the first cut of a plateau wins. Empty lower classes are skipped and the
// scan stops once the upper class is empty.
//
// The returned value is best cut + 1, the first luminance of the upper
// class. A two-tone image of luminance 20 and 230 therefore yields 21.
// A single-tone image yields 0.
func OtsuThreshold(img image.Image) uint8 {
	hist := LuminanceHistogram(img)
	return otsuFromHistogram(hist)
}

func otsuFromHistogram(hist [256]int) uint8 {
	total := 0
	sum := 0.0
	for i, n := range hist {
		total += n
		sum += float64(i * n)
	}

	var (
		sumB        float64
		wB          int
		maxVariance float64
		cut         = -1
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)

		if variance > maxVariance {
			maxVariance = variance
			cut = t
		}
	}

	if cut < 0 {
		return 0
	}
	return uint8(cut + 1)
}

// BackgroundAnalysis describes the two tones of a crop.
type BackgroundAnalysis struct {
	// Threshold is the Otsu luminance cut; luminance < Threshold is dark.
	Threshold uint8 `json:"threshold"`

	// DarkBackground is true when dark pixels outnumber light ones.
	DarkBackground bool `json:"dark_background"`

	// Background is the background-class pixel nearest the crop center,
	// searched within a quarter of the shorter side.
	Background         color.RGBA  `json:"-"`
	BackgroundPosition image.Point `json:"background_position"`

	// Text is the text-class pixel nearest the crop center.
	Text         color.RGBA  `json:"-"`
	TextPosition image.Point `json:"text_position"`
}

// AnalyzeBackground binarizes img with Otsu's threshold, treats the more
// populated class as background and picks representative background and
// text pixels near the center of the crop.
//
// When no background pixel lies in the search radius, Background falls back
// to pure black or white by polarity and its position to the center. When no
// text pixel exists, Text falls back to opaque black at the origin.
func AnalyzeBackground(img *image.RGBA) BackgroundAnalysis {
	threshold := OtsuThreshold(img)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dark, light := 0, 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if lumIndex(img.RGBAAt(x, y)) < int(threshold) {
				dark++
			} else {
				light++
			}
		}
	}
	isDarkBg := dark > light

	a := BackgroundAnalysis{
		Threshold:      threshold,
		DarkBackground: isDarkBg,
	}

	cx, cy := float64(w)/2, float64(h)/2
	isText := func(lum int) bool {
		if isDarkBg {
			return lum >= int(threshold)
		}
		return lum < int(threshold)
	}

	// Background: nearest background-class pixel inside the search box.
	radius := math.Min(float64(w), float64(h)) / 4
	bestBg := math.Inf(1)
	bgFound := false
	for y := int(math.Ceil(cy - radius)); float64(y) <= cy+radius; y++ {
		for x := int(math.Ceil(cx - radius)); float64(x) <= cx+radius; x++ {
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			if isText(lumIndex(c)) {
				continue
			}
			if d := math.Hypot(float64(x)-cx, float64(y)-cy); d < bestBg {
				bestBg = d
				bgFound = true
				a.Background = c
				a.BackgroundPosition = image.Pt(x, y)
			}
		}
	}
	if !bgFound {
		v := uint8(255)
		if isDarkBg {
			v = 0
		}
		a.Background = color.RGBA{R: v, G: v, B: v, A: 255}
		a.BackgroundPosition = image.Pt(w/2, h/2)
	}

	// Text: nearest text-class pixel anywhere in the crop.
	bestText := math.Inf(1)
	a.Text = color.RGBA{A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			if !isText(lumIndex(c)) {
				continue
			}
			if d := math.Hypot(float64(x)-cx, float64(y)-cy); d < bestText {
				bestText = d
				a.Text = c
				a.TextPosition = image.Pt(x, y)
			}
		}
	}

	return a
}

// lumIndex returns the rounded luminance of c as a histogram index.
func lumIndex(c color.Color) int {
	r, g, b, _ := c.RGBA()
	return int(math.Round(Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))))
}
