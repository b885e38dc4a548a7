package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
)

// Ink and Paper are the two values of a binarized image.
const (
	Ink   uint8 = 0
	Paper uint8 = 255
)

// BinarizeOptions tunes Binarize and LocateText.
type BinarizeOptions struct {
	// Tolerance is the per-channel distance for matching the background and
	// text representatives.
	Tolerance int `toml:"tolerance"`

	// DilateRadius and DilateIterations grow ink so letters merge into
	// words and lines.
	DilateRadius     float64 `toml:"dilate_radius"`
	DilateIterations int     `toml:"dilate_iterations"`

	// GrowScale scales the patience of GrowTextBlock: a side gives up after
	// min(round(min(w,h)/10*GrowScale), 100) probes without ink.
	GrowScale float64 `toml:"grow_scale"`
}

// DefaultBinarizeOptions returns the values used for speech bubbles.
func DefaultBinarizeOptions() BinarizeOptions {
	return BinarizeOptions{
		Tolerance:        30,
		DilateRadius:     2,
		DilateIterations: 2,
		GrowScale:        3.5,
	}
}

// Binarize renders img as ink on paper using the representatives found by
// AnalyzeBackground. Ink is always black and paper always white, whatever
// the polarity of the original.
//
// A pixel within Tolerance of the background representative becomes paper,
// one within Tolerance of the text representative becomes ink, and any
// other pixel is ink when its luminance is below 128. The ink is then
// dilated DilateIterations times with a (2*DilateRadius+1) square window.
func Binarize(img *image.RGBA, a BackgroundAnalysis, opts BinarizeOptions) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			v := Paper
			switch {
			case similarPerChannel(c, a.Background, opts.Tolerance):
				v = Paper
			case similarPerChannel(c, a.Text, opts.Tolerance):
				v = Ink
			case Luminance(c.R, c.G, c.B) < 128:
				v = Ink
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}

	for i := 0; i < opts.DilateIterations; i++ {
		// Ink is the darker value, so a minimum filter grows it.
		out = grayFromRGBA(effect.Erode(out, opts.DilateRadius))
	}
	return out
}

// RemoveBorderInk returns a copy of bin where every ink component that
// touches the image border (4-connected) is turned into paper. Lettering
// inside a bubble survives; bubble outlines and neighbouring art do not.
func RemoveBorderInk(bin *image.Gray) *image.Gray {
	out := image.NewGray(bin.Rect)
	copy(out.Pix, bin.Pix)

	b := out.Rect
	stack := make([]image.Point, 0)
	push := func(x, y int) {
		if out.GrayAt(x, y).Y == Ink {
			stack = append(stack, image.Pt(x, y))
		}
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		push(x, b.Min.Y)
		push(x, b.Max.Y-1)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		push(b.Min.X, y)
		push(b.Max.X-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(b) || out.GrayAt(p.X, p.Y).Y != Ink {
			continue
		}
		out.SetGray(p.X, p.Y, color.Gray{Y: Paper})

		stack = append(stack,
			image.Pt(p.X+1, p.Y),
			image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1),
			image.Pt(p.X, p.Y-1),
		)
	}
	return out
}

// GrowTextBlock grows a rectangle from seed until no side finds ink within
// three rows or columns beyond it.
//
// Each round probes all four sides; a side that sees ink moves out by one
// pixel, a side that does not counts a miss and stops after too many misses
// in a row (see BinarizeOptions.GrowScale). The result is in bin's
// coordinates; ok is false when the block is narrower or shorter than 3 px.
func GrowTextBlock(bin *image.Gray, seed image.Point, scale float64) (rect image.Rectangle, ok bool) {
	b := bin.Rect
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return image.Rectangle{}, false
	}

	sx := clampInt(seed.X, 0, w-1)
	sy := clampInt(seed.Y, 0, h-1)
	left, right, top, bottom := sx, sx, sy, sy

	maxMisses := int(math.Min(math.Round(float64(minInt(w, h))/10*scale), 100))

	inkInColumns := func(from, to int) bool {
		for x := from; x <= to; x++ {
			for y := top; y <= bottom; y++ {
				if bin.GrayAt(b.Min.X+x, b.Min.Y+y).Y == Ink {
					return true
				}
			}
		}
		return false
	}
	inkInRows := func(from, to int) bool {
		for y := from; y <= to; y++ {
			for x := left; x <= right; x++ {
				if bin.GrayAt(b.Min.X+x, b.Min.Y+y).Y == Ink {
					return true
				}
			}
		}
		return false
	}

	type side struct {
		active bool
		misses int
	}
	var sl, st, sr, sb = side{true, 0}, side{true, 0}, side{true, 0}, side{true, 0}

	step := func(s *side, canGrow bool, found func() bool, grow func()) {
		if !s.active || !canGrow {
			s.active = false
			return
		}
		if found() {
			grow()
			s.misses = 0
			return
		}
		s.misses++
		if s.misses >= maxMisses {
			s.active = false
		}
	}

	for sl.active || st.active || sr.active || sb.active {
		step(&sl, left > 0,
			func() bool { return inkInColumns(maxInt(0, left-3), left-1) },
			func() { left-- })
		step(&st, top > 0,
			func() bool { return inkInRows(maxInt(0, top-3), top-1) },
			func() { top-- })
		step(&sr, right < w-1,
			func() bool { return inkInColumns(right+1, minInt(w-1, right+3)) },
			func() { right++ })
		step(&sb, bottom < h-1,
			func() bool { return inkInRows(bottom+1, minInt(h-1, bottom+3)) },
			func() { bottom++ })
	}

	if right-left+1 < 3 || bottom-top+1 < 3 {
		return image.Rectangle{}, false
	}
	return image.Rect(left, top, right+1, bottom+1), true
}

// TextLocation is the result of LocateText.
type TextLocation struct {
	Analysis  BackgroundAnalysis
	Binarized *image.Gray
	Bounds    image.Rectangle
	Found     bool
}

// LocateText runs the full binarization chain on a bubble crop: background
// analysis, binarization, border-ink removal and block growth from the
// background representative. The binarized image is returned with border
// ink removed.
func LocateText(img *image.RGBA, opts BinarizeOptions) TextLocation {
	a := AnalyzeBackground(img)
	bin := RemoveBorderInk(Binarize(img, a, opts))
	rect, ok := GrowTextBlock(bin, a.BackgroundPosition, opts.GrowScale)
	return TextLocation{
		Analysis:  a,
		Binarized: bin,
		Bounds:    rect,
		Found:     ok,
	}
}

func grayFromRGBA(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: src.RGBAAt(b.Min.X+x, b.Min.Y+y).R})
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
