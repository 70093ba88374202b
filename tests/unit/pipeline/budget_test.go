package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
)

func TestBudget_FrameCeiling(t *testing.T) {
	budget := pipeline.NewBudget(3, time.Hour)

	assert.False(t, budget.Exceeded())

	budget.CountFrame()
	budget.CountFrame()
	assert.False(t, budget.Exceeded())

	budget.CountFrame()
	assert.True(t, budget.Exceeded())
	assert.Equal(t, 3, budget.FramesRead())
}

func TestBudget_TimeCeiling(t *testing.T) {
	budget := pipeline.NewBudget(1000, 10*time.Millisecond)

	assert.False(t, budget.Exceeded())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, budget.Exceeded())
}

func TestBudget_ExceededIsSticky(t *testing.T) {
	budget := pipeline.NewBudget(1, time.Hour)

	budget.CountFrame()
	assert.True(t, budget.Exceeded())

	// Still exceeded on repeated queries
	assert.True(t, budget.Exceeded())
}
