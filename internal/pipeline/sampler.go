package pipeline

// Sampler decides frame by frame whether a decoded frame is analyzed.
// Early frames are taken densely because they usually contain the clearest
// unobstructed faces; after that only every Nth frame is selected so total
// work stays bounded on long videos.
type Sampler struct {
	denseFrames int
	sparseEvery int
}

// NewSampler builds a sampler selecting every frame with ordinal <=
// denseFrames and afterwards only multiples of sparseEvery
func NewSampler(denseFrames, sparseEvery int) Sampler {
	return Sampler{
		denseFrames: denseFrames,
		sparseEvery: sparseEvery,
	}
}

// Select reports whether the frame with the given 1-based ordinal should be
// processed
func (s Sampler) Select(ordinal int) bool {
	if ordinal <= s.denseFrames {
		return true
	}
	return ordinal%s.sparseEvery == 0
}
