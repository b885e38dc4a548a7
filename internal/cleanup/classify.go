package cleanup

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textclean/internal/imaging"
)

// FillMode says how a crop gets painted.
type FillMode int

const (
	// FillNone leaves the pixels untouched.
	FillNone FillMode = iota

	// FillMasked paints only the pixels under the mask.
	FillMasked

	// FillSolid paints the whole crop.
	FillSolid
)

func (f FillMode) String() string {
	switch f {
	case FillMasked:
		return "masked"
	case FillSolid:
		return "solid"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f FillMode) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// CropKind distinguishes speech bubbles from tight text rectangles.
type CropKind int

const (
	// KindBubble is a speech bubble or caption box.
	KindBubble CropKind = iota

	// KindText is a tight rectangle around free-floating text. It is
	// extended by a few pixels and may be filled whole.
	KindText
)

func (k CropKind) String() string {
	if k == KindText {
		return "text"
	}
	return "bubble"
}

// MarshalText implements encoding.TextMarshaler.
func (k CropKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CropKind) UnmarshalText(b []byte) error {
	v, err := ParseCropKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseCropKind parses "bubble" (or "") and "text".
func ParseCropKind(s string) (CropKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bubble":
		return KindBubble, nil
	case "text":
		return KindText, nil
	default:
		return KindBubble, fmt.Errorf("unknown crop kind %q (want bubble or text)", s)
	}
}

// ClassifyOptions holds the background decision thresholds.
type ClassifyOptions struct {
	// MinMaskedCoverage is the share (0-100) the most frequent color must
	// hold around the mask before the masked fill is used.
	MinMaskedCoverage float64 `toml:"min_masked_coverage"`

	// Colors within NearThreshold (or FarThreshold when the crop has at
	// most ManyColors distinct colors) of the top color are averaged into
	// the fill.
	ManyColors    int `toml:"many_colors"`
	NearThreshold int `toml:"near_threshold"`
	FarThreshold  int `toml:"far_threshold"`

	// A text crop is filled whole when its approximate dominant color
	// covers at least MinSolidCoverage percent or it has at most
	// MaxSolidColors buckets.
	MinSolidCoverage float64 `toml:"min_solid_coverage"`
	MaxSolidColors   int     `toml:"max_solid_colors"`
}

// DefaultClassifyOptions returns the thresholds for scanned comics.
func DefaultClassifyOptions() ClassifyOptions {
	return ClassifyOptions{
		MinMaskedCoverage: 24,
		ManyColors:        5,
		NearThreshold:     40,
		FarThreshold:      60,
		MinSolidCoverage:  20,
		MaxSolidColors:    3,
	}
}

// Decision is the outcome of classifying a crop's background.
type Decision struct {
	Fill  FillMode   `json:"fill"`
	Color color.RGBA `json:"-"`

	// IsSolidBackground is set only when the whole crop is filled.
	IsSolidBackground bool `json:"is_solid_background"`

	// Coverage and UniqueColors come from the histogram that decided.
	Coverage     float64 `json:"coverage"`
	UniqueColors int     `json:"unique_colors"`
}

// Classifier decides how a crop's text should be painted over.
type Classifier struct {
	opts ClassifyOptions
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(opts ClassifyOptions) *Classifier {
	return &Classifier{opts: opts}
}

// Classify picks a fill for img given its text mask (nil when none was
// built).
//
// Bubbles use the masked decision only. Text crops try the coarse whole-crop
// decision first and fall back to the masked decision when a mask exists.
func (c *Classifier) Classify(img *image.RGBA, m *image.Alpha, kind CropKind) Decision {
	if kind == KindText {
		if d := c.Coarse(img, m); d.Fill == FillSolid {
			return d
		}
	}
	if m == nil {
		return Decision{Fill: FillNone}
	}
	return c.Masked(img, m)
}

// Masked decides the fill around a mask from the exact colors of the
// unmasked pixels. When the top color is common enough, the fill is the
// count-weighted mean of every color close to it.
//
// Only masked pixels are painted on this path, so IsSolidBackground stays
// false.
func (c *Classifier) Masked(img *image.RGBA, m *image.Alpha) Decision {
	stats := imaging.AnalyzeMaskedColors(img, m)
	d := Decision{
		Fill:         FillNone,
		Coverage:     stats.Percentage,
		UniqueColors: stats.UniqueColors,
	}
	if stats.TotalPixels == 0 || stats.Percentage < c.opts.MinMaskedCoverage {
		return d
	}

	threshold := c.opts.FarThreshold
	if stats.UniqueColors > c.opts.ManyColors {
		threshold = c.opts.NearThreshold
	}

	top := stats.Top()
	var rs, gs, bs, weights []float64
	for _, s := range stats.Colors {
		if !imaging.WithinDistance(top, s.Color, threshold) {
			continue
		}
		rs = append(rs, float64(s.Color.R))
		gs = append(gs, float64(s.Color.G))
		bs = append(bs, float64(s.Color.B))
		weights = append(weights, float64(s.Count))
	}

	d.Fill = FillMasked
	d.Color = color.RGBA{
		R: roundChannel(stat.Mean(rs, weights)),
		G: roundChannel(stat.Mean(gs, weights)),
		B: roundChannel(stat.Mean(bs, weights)),
		A: 255,
	}
	return d
}

// Coarse decides whether the whole crop is flat enough to fill with its
// approximate dominant color.
func (c *Classifier) Coarse(img *image.RGBA, m *image.Alpha) Decision {
	stats := imaging.DominantColor(img, m)
	d := Decision{
		Fill:         FillNone,
		Coverage:     stats.Percentage,
		UniqueColors: stats.UniqueColors,
	}
	if stats.TotalPixels == 0 {
		return d
	}
	if stats.Percentage >= c.opts.MinSolidCoverage || stats.UniqueColors <= c.opts.MaxSolidColors {
		d.Fill = FillSolid
		d.IsSolidBackground = true
		d.Color = stats.Color
	}
	return d
}

func roundChannel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
