package detection

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// RejectReason explains why a detection or cluster was dropped.
type RejectReason string

const (
	ReasonLowConfidence RejectReason = "low_confidence"
	ReasonEmptyText     RejectReason = "empty_text"
	ReasonNoise         RejectReason = "noise"
	ReasonNearEdge      RejectReason = "near_edge"
	ReasonWeakSingleton RejectReason = "weak_singleton"
)

// FilterOptions holds the thresholds used by Filter.
type FilterOptions struct {
	// MinConfidence rejects anything below it outright.
	MinConfidence float64 `toml:"min_confidence"`

	// SingleCharMinConfidence and SingleCharMinSize apply to one-character text.
	SingleCharMinConfidence float64 `toml:"single_char_min_confidence"`
	SingleCharMinSize       int     `toml:"single_char_min_size"`

	// ShortTextMaxLen and ShortTextMinConfidence apply to short text that has
	// no run of two ASCII letters.
	ShortTextMaxLen        int     `toml:"short_text_max_len"`
	ShortTextMinConfidence float64 `toml:"short_text_min_confidence"`
}

// DefaultFilterOptions returns the thresholds tuned for comic lettering.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		MinConfidence:           30,
		SingleCharMinConfidence: 70,
		SingleCharMinSize:       15,
		ShortTextMaxLen:         2,
		ShortTextMinConfidence:  80,
	}
}

// Rejection pairs a dropped detection with the rule that dropped it.
type Rejection struct {
	Detection Detection    `json:"detection"`
	Reason    RejectReason `json:"reason"`
}

// FilterResult partitions the input of Filter. Kept preserves input order.
type FilterResult struct {
	Kept     []Detection `json:"kept"`
	Rejected []Rejection `json:"rejected"`
}

var letterPair = regexp.MustCompile(`[A-Za-z]{2,}`)

// Filter drops low-confidence, empty and noise detections.
//
// A detection is rejected when any of these hold, evaluated on the trimmed text:
//   - confidence below MinConfidence
//   - empty or whitespace-only text
//   - a single character with low confidence or a box narrower or shorter
//     than SingleCharMinSize
//   - at most ShortTextMaxLen characters, no two consecutive ASCII letters,
//     and confidence below ShortTextMinConfidence
//
// Every input detection ends up in exactly one of Kept or Rejected.
func Filter(dets []Detection, opts FilterOptions) FilterResult {
	result := FilterResult{
		Kept:     make([]Detection, 0, len(dets)),
		Rejected: make([]Rejection, 0),
	}

	for _, d := range dets {
		if reason, ok := rejectReason(d, opts); ok {
			result.Rejected = append(result.Rejected, Rejection{Detection: d, Reason: reason})
			continue
		}
		result.Kept = append(result.Kept, d)
	}

	return result
}

func rejectReason(d Detection, opts FilterOptions) (RejectReason, bool) {
	text := strings.TrimSpace(d.Text)

	if d.Confidence < opts.MinConfidence {
		return ReasonLowConfidence, true
	}
	if text == "" {
		return ReasonEmptyText, true
	}

	n := utf8.RuneCountInString(text)
	singleChar := n == 1 &&
		(d.Confidence < opts.SingleCharMinConfidence ||
			d.BBox.Width() < opts.SingleCharMinSize ||
			d.BBox.Height() < opts.SingleCharMinSize)
	shortNonsense := n <= opts.ShortTextMaxLen &&
		!letterPair.MatchString(text) &&
		d.Confidence < opts.ShortTextMinConfidence

	if singleChar || shortNonsense {
		return ReasonNoise, true
	}
	return "", false
}
