package pipeline

import (
	"sync"

	"vidset/internal/sampling"
)

// Counters are the run totals.
type Counters struct {
	Train       int `json:"train"`
	Val         int `json:"val"`
	VideoErrors int `json:"video_errors"`
	FrameErrors int `json:"frame_errors"`
}

// Total returns the number of samples written.
func (c Counters) Total() int {
	return c.Train + c.Val
}

// Percentages returns the train and val shares of Total. ok is false when no
// samples were written.
func (c Counters) Percentages() (train, val float64, ok bool) {
	total := c.Total()
	if total == 0 {
		return 0, 0, false
	}
	return 100 * float64(c.Train) / float64(total), 100 * float64(c.Val) / float64(total), true
}

// Accumulator counts run outcomes. Counts only ever increase. It is safe for
// concurrent use so observers may snapshot it while the runner records.
type Accumulator struct {
	mu       sync.Mutex
	counters Counters
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// RecordSuccess counts one written sample in split.
func (a *Accumulator) RecordSuccess(split string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch split {
	case sampling.Train:
		a.counters.Train++
	case sampling.Val:
		a.counters.Val++
	}
}

// RecordVideoError counts one skipped video.
func (a *Accumulator) RecordVideoError() {
	a.mu.Lock()
	a.counters.VideoErrors++
	a.mu.Unlock()
}

// RecordFrameError counts one skipped frame.
func (a *Accumulator) RecordFrameError() {
	a.mu.Lock()
	a.counters.FrameErrors++
	a.mu.Unlock()
}

// Snapshot returns the current counters.
func (a *Accumulator) Snapshot() Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters
}
