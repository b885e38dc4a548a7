package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/ironsheep/textclean/internal/detection"
)

// ErrEmptyMask is returned when a source yields nothing to cover.
var ErrEmptyMask = errors.New("mask: nothing to cover")

// Strategy names how a mask was built.
type Strategy int

const (
	// StrategyNone means no mask was built.
	StrategyNone Strategy = iota

	// StrategyBlocks fills padded cluster rectangles plus one bridging
	// rectangle.
	StrategyBlocks

	// StrategyPolygon fills a smoothed outline around the ink rows of a
	// binarized crop.
	StrategyPolygon
)

func (s Strategy) String() string {
	switch s {
	case StrategyBlocks:
		return "blocks"
	case StrategyPolygon:
		return "polygon"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStrategy parses "blocks", "polygon", or "none"/"auto"/"" (StrategyNone).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blocks":
		return StrategyBlocks, nil
	case "polygon":
		return StrategyPolygon, nil
	case "", "none", "auto":
		return StrategyNone, nil
	default:
		return StrategyNone, fmt.Errorf("unknown mask strategy %q (want blocks or polygon)", s)
	}
}

// Options tunes both strategies.
type Options struct {
	// Padding grows every cluster rectangle and the bridging rectangle.
	Padding int `toml:"padding"`

	// InkThreshold is the luminance below which a binarized pixel is ink.
	InkThreshold float64 `toml:"ink_threshold"`

	// MaxRowGap is the largest distance between ink rows of one block.
	MaxRowGap int `toml:"max_row_gap"`
}

// DefaultOptions returns the values used for comic lettering.
func DefaultOptions() Options {
	return Options{
		Padding:      5,
		InkThreshold: 50,
		MaxRowGap:    10,
	}
}

// Source carries the inputs of one mask build. Fill Clusters for the block
// strategy, or Binarized and Rect for the polygon strategy.
type Source struct {
	// Clusters are accepted clusters in crop coordinates.
	Clusters []detection.Cluster

	// Offset shifts cluster coordinates into mask coordinates, for masks
	// built over an extended crop.
	Offset image.Point

	// Binarized is the crop rendered as dark ink on light paper.
	Binarized image.Image

	// Rect bounds the ink scan, in Binarized coordinates.
	Rect image.Rectangle
}

// Strategy reports which strategy Build will use for s. The polygon
// strategy wins when both inputs are present.
func (s Source) Strategy() Strategy {
	switch {
	case s.Binarized != nil:
		return StrategyPolygon
	case len(s.Clusters) > 0:
		return StrategyBlocks
	default:
		return StrategyNone
	}
}

// Mask is a text mask the size of the crop it was built for. Alpha is 255
// where text was found and 0 elsewhere.
type Mask struct {
	Alpha    *image.Alpha
	Strategy Strategy
}

// Build creates a width x height mask from src.
func Build(src Source, width, height int, opts Options) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask size %dx%d", width, height)
	}

	var (
		alpha *image.Alpha
		err   error
	)
	strategy := src.Strategy()
	switch strategy {
	case StrategyPolygon:
		alpha, err = Polygon(src.Binarized, src.Rect, width, height, opts)
	case StrategyBlocks:
		alpha, err = Blocks(src.Clusters, src.Offset, width, height, opts.Padding)
	default:
		return nil, ErrEmptyMask
	}
	if err != nil {
		return nil, err
	}
	return &Mask{Alpha: alpha, Strategy: strategy}, nil
}

// Covered returns the number of pixels the mask covers.
func (m *Mask) Covered() int {
	n := 0
	for _, a := range m.Alpha.Pix {
		if a > 0 {
			n++
		}
	}
	return n
}

// Image renders the mask as opaque white text on a transparent background.
func (m *Mask) Image() *image.NRGBA {
	b := m.Alpha.Rect
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.Alpha.AlphaAt(x, y).A > 0 {
				out.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return out
}
