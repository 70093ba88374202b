package pipeline

import (
	"math"
	"sort"
)

// Verdict labels
const (
	LabelReal    = "Real"
	LabelFake    = "Fake"
	LabelNoFaces = "No Faces"
	LabelError   = "Error"
)

// ScorePercentile is the percentile of the per-face fake probabilities used
// as the video confidence. A high percentile is robust both to a minority of
// clean frames diluting a manipulated video and to a single spurious outlier
// flagging a real one; mean and max fail one side each.
const ScorePercentile = 70

// FakeThreshold is the verdict midpoint on the aggregated confidence
const FakeThreshold = 0.5

// Aggregate combines the per-face fake probabilities collected across a
// video into one verdict. Order of scores is irrelevant. An empty score set
// means no face ever survived detection and size filtering.
func Aggregate(scores []float64) (string, float64) {
	if len(scores) == 0 {
		return LabelNoFaces, 0.0
	}

	confidence := Percentile(scores, ScorePercentile)
	if confidence > FakeThreshold {
		return LabelFake, confidence
	}
	return LabelReal, confidence
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. The input is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)

	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
