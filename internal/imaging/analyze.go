package imaging

import (
	"image"
	"image/color"
	"sort"
)

// DefaultSimilarity is the RGB distance under which two colors share a
// bucket in DominantColor.
const DefaultSimilarity = 20

// White is reported when there is nothing to analyze.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ColorSample is one histogram bucket: a color and how many pixels hold it.
type ColorSample struct {
	Color color.RGBA `json:"-"`
	Count int        `json:"count"`
}

// MaskedColors is the exact-color histogram of the unmasked part of a crop.
type MaskedColors struct {
	// Colors is sorted by descending Count. Ties keep first-seen order.
	Colors []ColorSample `json:"colors"`

	// Percentage is the share of TotalPixels held by Colors[0], 0-100.
	Percentage float64 `json:"percentage"`

	// UniqueColors is len(Colors).
	UniqueColors int `json:"unique_colors"`

	// TotalPixels counts the pixels that took part in the histogram.
	TotalPixels int `json:"total_pixels"`
}

// Top returns the most frequent color, or White when the histogram is empty.
func (m MaskedColors) Top() color.RGBA {
	if len(m.Colors) == 0 {
		return White
	}
	return m.Colors[0].Color
}

// AnalyzeMaskedColors builds an exact RGBA histogram of img, skipping every
// pixel the mask covers (alpha > 0) and every pixel that is fully
// transparent. A nil mask covers nothing.
//
// The mask is aligned to img by offset from each image's Min corner, so a
// mask anchored at the origin lines up with a crop anchored anywhere.
func AnalyzeMaskedColors(img *image.RGBA, mask *image.Alpha) MaskedColors {
	b := img.Bounds()
	index := make(map[color.RGBA]int)
	samples := make([]ColorSample, 0)
	total := 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isMasked(mask, x-b.Min.X, y-b.Min.Y) {
				continue
			}
			c := img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			if i, ok := index[c]; ok {
				samples[i].Count++
			} else {
				index[c] = len(samples)
				samples = append(samples, ColorSample{Color: c, Count: 1})
			}
			total++
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Count > samples[j].Count
	})

	result := MaskedColors{
		Colors:       samples,
		UniqueColors: len(samples),
		TotalPixels:  total,
	}
	if total > 0 {
		result.Percentage = float64(samples[0].Count) / float64(total) * 100
	}
	return result
}

// DominantStats summarizes the approximate palette of a crop.
type DominantStats struct {
	// Color is the representative of the largest bucket.
	Color color.RGBA `json:"-"`

	// Percentage is the share of counted pixels in the largest bucket, 0-100.
	Percentage float64 `json:"percentage"`

	// UniqueColors is the number of buckets.
	UniqueColors int `json:"unique_colors"`

	// TotalPixels counts the pixels that were bucketed.
	TotalPixels int `json:"total_pixels"`
}

// DominantColor groups the pixels of img into approximate color buckets and
// reports the largest one. Pixels under the mask (alpha > 0) are skipped; a
// nil mask skips nothing.
//
// # Algorithm
//
// Each pixel joins the first existing bucket whose representative lies
// within DefaultSimilarity in RGB distance, otherwise it opens a new bucket
// with itself as representative. Representatives are never re-centered, so
// the result depends on scan order (row-major, top-left first).
//
// When no pixel is counted the dominant color is opaque white.
func DominantColor(img *image.RGBA, mask *image.Alpha) DominantStats {
	return dominantColor(img, mask, DefaultSimilarity)
}

func dominantColor(img *image.RGBA, mask *image.Alpha, similarity int) DominantStats {
	b := img.Bounds()
	buckets := make([]ColorSample, 0)
	total := 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isMasked(mask, x-b.Min.X, y-b.Min.Y) {
				continue
			}
			c := img.RGBAAt(x, y)
			found := false
			for i := range buckets {
				if WithinDistance(c, buckets[i].Color, similarity) {
					buckets[i].Count++
					found = true
					break
				}
			}
			if !found {
				buckets = append(buckets, ColorSample{Color: c, Count: 1})
			}
			total++
		}
	}

	stats := DominantStats{
		Color:        White,
		UniqueColors: len(buckets),
		TotalPixels:  total,
	}
	maxCount := 0
	for _, bucket := range buckets {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
			stats.Color = bucket.Color
		}
	}
	if total > 0 {
		stats.Percentage = float64(maxCount) / float64(total) * 100
	}
	return stats
}

// isMasked reports whether the mask covers the pixel at offset (dx, dy)
// from its Min corner.
func isMasked(mask *image.Alpha, dx, dy int) bool {
	if mask == nil {
		return false
	}
	p := image.Pt(mask.Rect.Min.X+dx, mask.Rect.Min.Y+dy)
	if !p.In(mask.Rect) {
		return false
	}
	return mask.AlphaAt(p.X, p.Y).A > 0
}
