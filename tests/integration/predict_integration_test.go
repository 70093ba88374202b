// +build integration

package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegmarip/deepfake-sentinel/internal/classifier"
	"github.com/smegmarip/deepfake-sentinel/internal/detect"
	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
	"github.com/smegmarip/deepfake-sentinel/tests/testutil"
)

// newRealPipeline wires the cascade detector and ONNX classifier against the
// configured fixtures
func newRealPipeline(t *testing.T, env *testutil.TestEnv) *pipeline.Pipeline {
	t.Helper()

	backend, err := detect.NewCascadeBackend(env.CascadePath)
	require.NoError(t, err)
	locator := detect.NewLocator(backend, 30, 0.4)
	t.Cleanup(func() { locator.Close() })

	loader := classifier.NewLoader(env.ModelPath, "cpu")
	handle, err := loader.EnsureLoaded()
	require.NoError(t, err)

	return pipeline.New(locator, handle, pipeline.DefaultOptions())
}

func TestPredictVideo_RealModel(t *testing.T) {
	testutil.SkipIfShort(t)
	env := testutil.SetupTestEnv(t)
	env.RequireFixtures(env.ModelPath, env.CascadePath, env.VideoPath)

	p := newRealPipeline(t, env)
	result := p.PredictVideo(env.VideoPath)

	assert.Contains(t, []string{
		pipeline.LabelReal,
		pipeline.LabelFake,
		pipeline.LabelNoFaces,
	}, result.Label)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.LessOrEqual(t, len(result.Frames), pipeline.DefaultOptions().SaveLimit)
}

func TestPredictImage_RealModel(t *testing.T) {
	testutil.SkipIfShort(t)
	env := testutil.SetupTestEnv(t)
	env.RequireFixtures(env.ModelPath, env.CascadePath, env.ImagePath)

	p := newRealPipeline(t, env)
	result := p.PredictImage(env.ImagePath)

	assert.NotEqual(t, pipeline.LabelError, result.Label)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestModelLoader_RealWeights(t *testing.T) {
	testutil.SkipIfShort(t)
	env := testutil.SetupTestEnv(t)
	env.RequireFixtures(env.ModelPath)

	loader := classifier.NewLoader(env.ModelPath, "cpu")
	assert.False(t, loader.Loaded())

	handle, err := loader.EnsureLoaded()
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.True(t, loader.Loaded())

	// Second call reuses the handle
	again, err := loader.EnsureLoaded()
	require.NoError(t, err)
	assert.Same(t, handle, again)
}
