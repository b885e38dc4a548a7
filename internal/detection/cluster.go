package detection

import "math"

// ClusterOptions holds the gap and acceptance thresholds used by ClusterDetections.
type ClusterOptions struct {
	// MaxGapX and MaxGapY are the largest edge-to-edge gaps (exclusive) that
	// still join two detections. Either axis passing is enough.
	MaxGapX int `toml:"max_gap_x"`
	MaxGapY int `toml:"max_gap_y"`

	// Clusters reaching into these margins of the crop are dropped as
	// bleed-over from neighbouring panels.
	MarginSides  int `toml:"margin_sides"`
	MarginTop    int `toml:"margin_top"`
	MarginBottom int `toml:"margin_bottom"`

	// A lone detection survives only when it is wider than SingletonMinWidth,
	// taller than SingletonMinHeight or more confident than
	// SingletonMinConfidence, and its text is longer than SingletonMinTextLen.
	SingletonMinWidth      int     `toml:"singleton_min_width"`
	SingletonMinHeight     int     `toml:"singleton_min_height"`
	SingletonMinConfidence float64 `toml:"singleton_min_confidence"`
	SingletonMinTextLen    int     `toml:"singleton_min_text_len"`
}

// DefaultClusterOptions returns the thresholds tuned for speech bubbles.
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		MaxGapX:                20,
		MaxGapY:                50,
		MarginSides:            10,
		MarginTop:              10,
		MarginBottom:           5,
		SingletonMinWidth:      30,
		SingletonMinHeight:     15,
		SingletonMinConfidence: 85,
		SingletonMinTextLen:    2,
	}
}

// Cluster is a group of detections believed to form one text block.
type Cluster struct {
	Members        []Detection  `json:"members"`
	Bounds         BBox         `json:"bounds"`
	MeanConfidence float64      `json:"mean_confidence"`
	Reason         RejectReason `json:"reason,omitempty"`
}

// ClusterResult partitions the clusters built by ClusterDetections.
type ClusterResult struct {
	Accepted []Cluster `json:"accepted"`
	Rejected []Cluster `json:"rejected"`
}

// ClusterDetections groups detections into text blocks for a crop of the
// given size and splits the groups into accepted and rejected.
//
// # Algorithm
//
// A single forward sweep: each detection not yet used seeds a cluster and
// absorbs every other unused detection whose horizontal gap is below
// MaxGapX or whose vertical gap is below MaxGapY, measured from the seed
// only. The gap on an axis is min(|a.x0-b.x1|, |a.x1-b.x0|).
//
// Membership is therefore order-dependent and not transitive: a detection
// near an absorbed member but far from the seed starts its own cluster.
//
// Every input detection appears in exactly one accepted or rejected cluster.
func ClusterDetections(dets []Detection, width, height int, opts ClusterOptions) ClusterResult {
	result := ClusterResult{
		Accepted: make([]Cluster, 0),
		Rejected: make([]Cluster, 0),
	}

	used := make([]bool, len(dets))
	for i, seed := range dets {
		if used[i] {
			continue
		}
		used[i] = true
		members := []Detection{seed}

		for j, other := range dets {
			if j == i || used[j] {
				continue
			}
			if axisGap(seed.BBox.X0, seed.BBox.X1, other.BBox.X0, other.BBox.X1) < opts.MaxGapX ||
				axisGap(seed.BBox.Y0, seed.BBox.Y1, other.BBox.Y0, other.BBox.Y1) < opts.MaxGapY {
				members = append(members, other)
				used[j] = true
			}
		}

		c := newCluster(members)
		if reason, ok := clusterRejectReason(c, width, height, opts); ok {
			c.Reason = reason
			result.Rejected = append(result.Rejected, c)
			continue
		}
		result.Accepted = append(result.Accepted, c)
	}

	return result
}

func newCluster(members []Detection) Cluster {
	bounds := members[0].BBox
	sum := 0.0
	for _, m := range members {
		bounds = bounds.Union(m.BBox)
		sum += m.Confidence
	}
	return Cluster{
		Members:        members,
		Bounds:         bounds,
		MeanConfidence: sum / float64(len(members)),
	}
}

func clusterRejectReason(c Cluster, width, height int, opts ClusterOptions) (RejectReason, bool) {
	b := c.Bounds
	if b.X0 < opts.MarginSides || b.X1 > width-opts.MarginSides ||
		b.Y0 < opts.MarginTop || b.Y1 > height-opts.MarginBottom {
		return ReasonNearEdge, true
	}

	if len(c.Members) >= 2 {
		return "", false
	}

	strong := b.Width() > opts.SingletonMinWidth ||
		b.Height() > opts.SingletonMinHeight ||
		c.MeanConfidence > opts.SingletonMinConfidence
	if strong && len([]rune(c.Members[0].Text)) > opts.SingletonMinTextLen {
		return "", false
	}
	return ReasonWeakSingleton, true
}

// axisGap is the smaller distance between facing edges of two intervals.
func axisGap(a0, a1, b0, b1 int) int {
	return int(math.Min(math.Abs(float64(a0-b1)), math.Abs(float64(a1-b0))))
}
