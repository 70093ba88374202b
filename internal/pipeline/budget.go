package pipeline

import "time"

// Budget owns the hard ceilings for one invocation: a frame-count cap and a
// wall-clock deadline, both measured from pipeline start. The orchestrator
// queries Exceeded once per loop iteration, so termination policy lives in
// one place. Crossing a ceiling is early termination, not an error.
type Budget struct {
	maxFrames  int
	deadline   time.Time
	framesRead int
}

// NewBudget starts a budget clock now
func NewBudget(maxFrames int, timeLimit time.Duration) *Budget {
	return &Budget{
		maxFrames: maxFrames,
		deadline:  time.Now().Add(timeLimit),
	}
}

// CountFrame records one frame read from the source
func (b *Budget) CountFrame() {
	b.framesRead++
}

// FramesRead returns how many frames have been counted
func (b *Budget) FramesRead() int {
	return b.framesRead
}

// Exceeded reports whether either ceiling has been crossed
func (b *Budget) Exceeded() bool {
	if b.framesRead >= b.maxFrames {
		return true
	}
	return !time.Now().Before(b.deadline)
}
