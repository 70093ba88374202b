package server

import (
	"github.com/smegmarip/deepfake-sentinel/internal/classifier"
	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
)

// Service is the analysis surface the handlers consume
type Service interface {
	Ready() bool
	PredictVideo(path string) (pipeline.Result, error)
	PredictImage(path string) (pipeline.Result, error)
}

// Analyzer binds the lazy model loader, the face locator and the pipeline
// options into the Service contract. The returned error from the predict
// methods means "model unavailable"; analysis problems surface inside the
// Result instead.
type Analyzer struct {
	loader  *classifier.Loader
	locator pipeline.Locator
	opts    pipeline.Options
}

// NewAnalyzer creates the production Service
func NewAnalyzer(loader *classifier.Loader, locator pipeline.Locator, opts pipeline.Options) *Analyzer {
	return &Analyzer{
		loader:  loader,
		locator: locator,
		opts:    opts,
	}
}

// Ready reports whether the classifier is loaded
func (a *Analyzer) Ready() bool {
	return a.loader.Loaded()
}

// PredictVideo classifies the video at path
func (a *Analyzer) PredictVideo(path string) (pipeline.Result, error) {
	handle, err := a.loader.EnsureLoaded()
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.New(a.locator, handle, a.opts).PredictVideo(path), nil
}

// PredictImage classifies the still image at path
func (a *Analyzer) PredictImage(path string) (pipeline.Result, error) {
	handle, err := a.loader.EnsureLoaded()
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.New(a.locator, handle, a.opts).PredictImage(path), nil
}
