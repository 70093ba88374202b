package pipeline_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
)

func TestAggregate_EmptyScores(t *testing.T) {
	label, confidence := pipeline.Aggregate(nil)

	assert.Equal(t, pipeline.LabelNoFaces, label)
	assert.Equal(t, 0.0, confidence)
}

func TestAggregate_Labels(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected string
	}{
		{"single low score", []float64{0.1}, pipeline.LabelReal},
		{"single high score", []float64{0.9}, pipeline.LabelFake},
		{"exactly threshold stays real", []float64{0.5}, pipeline.LabelReal},
		{"uniform fake scores", []float64{0.8, 0.85, 0.9, 0.95}, pipeline.LabelFake},
		{"uniform real scores", []float64{0.05, 0.1, 0.15, 0.2}, pipeline.LabelReal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, _ := pipeline.Aggregate(tt.scores)
			assert.Equal(t, tt.expected, label)
		})
	}
}

func TestAggregate_OrderInvariant(t *testing.T) {
	scores := []float64{0.1, 0.9, 0.4, 0.7, 0.2, 0.85, 0.6}

	_, want := pipeline.Aggregate(scores)

	shuffled := append([]float64(nil), scores...)
	for i := 0; i < 10; i++ {
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		_, got := pipeline.Aggregate(shuffled)
		assert.Equal(t, want, got)
	}
}

func TestAggregate_MinorityCleanFramesDoNotDilute(t *testing.T) {
	// Most faces score high, a minority look clean. The high percentile must
	// still flag the video.
	scores := []float64{0.9, 0.92, 0.88, 0.95, 0.91, 0.9, 0.93, 0.1, 0.15, 0.2}

	label, confidence := pipeline.Aggregate(scores)

	assert.Equal(t, pipeline.LabelFake, label)
	assert.Greater(t, confidence, 0.8)
}

func TestAggregate_SingleOutlierDoesNotFlag(t *testing.T) {
	// One spurious high score among many clean faces must not flip a real
	// video, which is where max aggregation fails
	scores := []float64{0.1, 0.12, 0.08, 0.15, 0.11, 0.09, 0.13, 0.1, 0.12, 0.98}

	label, confidence := pipeline.Aggregate(scores)

	assert.Equal(t, pipeline.LabelReal, label)
	assert.Less(t, confidence, 0.5)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"empty", nil, 70, 0.0},
		{"single value", []float64{0.42}, 70, 0.42},
		{"median of pair", []float64{0.0, 1.0}, 50, 0.5},
		{"zeroth percentile is min", []float64{0.3, 0.1, 0.2}, 0, 0.1},
		{"hundredth percentile is max", []float64{0.3, 0.1, 0.2}, 100, 0.3},
		{"interpolated", []float64{0.0, 1.0, 2.0, 3.0, 4.0}, 70, 2.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, pipeline.Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestPercentile_DoesNotModifyInput(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5}

	pipeline.Percentile(values, 70)

	assert.Equal(t, []float64{0.9, 0.1, 0.5}, values)
}
