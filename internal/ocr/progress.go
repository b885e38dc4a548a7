package ocr

import "sync/atomic"

// Progress counts finished OCR crops. The zero value is ready to use and
// safe for concurrent use.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

// Reset zeroes the counter and sets the expected total.
func (p *Progress) Reset(total int) {
	p.done.Store(0)
	p.total.Store(int64(total))
}

// Add records n more finished crops.
func (p *Progress) Add(n int) {
	p.done.Add(int64(n))
}

// Snapshot returns the finished and expected counts.
func (p *Progress) Snapshot() (done, total int) {
	return int(p.done.Load()), int(p.total.Load())
}

// Percent returns done/total as 0-100, or 0 when no total is set.
func (p *Progress) Percent() float64 {
	done, total := p.Snapshot()
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
