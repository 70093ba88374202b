package pipeline

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/smegmarip/deepfake-sentinel/internal/annotate"
	"github.com/smegmarip/deepfake-sentinel/internal/config"
	"github.com/smegmarip/deepfake-sentinel/internal/detect"
	"github.com/smegmarip/deepfake-sentinel/internal/video"
)

// Result is the sole externally visible output of one pipeline invocation.
// Immutable once constructed.
type Result struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Frames     []string `json:"frames"`
}

// Locator finds face regions in a BGR frame; never errors (a failed frame
// has no faces)
type Locator interface {
	Locate(frame gocv.Mat) []detect.Face
}

// Scorer classifies one RGB face crop as fake with the returned probability
type Scorer interface {
	Score(crop gocv.Mat) (float64, error)
}

// Source yields decoded frames with 1-based ordinals until the stream ends
type Source interface {
	Next() (gocv.Mat, int, bool)
	Close() error
}

// Options bound the work one invocation may do
type Options struct {
	DenseFrames  int
	SparseEvery  int
	MaxFrames    int
	TimeLimit    time.Duration
	SaveLimit    int
	PreviewWidth int
	JPEGQuality  int
}

// DefaultOptions returns the canonical sampling and budget policy
func DefaultOptions() Options {
	return Options{
		DenseFrames:  30,
		SparseEvery:  5,
		MaxFrames:    80,
		TimeLimit:    15 * time.Second,
		SaveLimit:    4,
		PreviewWidth: 640,
		JPEGQuality:  80,
	}
}

// OptionsFromConfig maps service configuration onto pipeline options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.MaxFrames = cfg.MaxFrames
	opts.TimeLimit = cfg.TimeLimit
	opts.SaveLimit = cfg.SaveLimit
	opts.PreviewWidth = cfg.PreviewWidth
	opts.JPEGQuality = cfg.JPEGQuality
	return opts
}

// Pipeline composes the sampler, locator, classifier, recorder and
// aggregator into the video-level predict operation. One Pipeline may serve
// concurrent invocations; all per-invocation state lives on the stack.
type Pipeline struct {
	locator Locator
	scorer  Scorer
	opts    Options
}

// New builds a pipeline around a locator and scorer
func New(locator Locator, scorer Scorer, opts Options) *Pipeline {
	return &Pipeline{
		locator: locator,
		scorer:  scorer,
		opts:    opts,
	}
}

// PredictVideo classifies the video at path. A container that cannot be
// opened yields the "Error" result; everything past that point degrades to
// partial results rather than failing.
func (p *Pipeline) PredictVideo(path string) Result {
	src, err := video.Open(path)
	if err != nil {
		log.Warnf("Cannot open video %s: %v", path, err)
		return errorResult()
	}
	defer src.Close()

	return p.Predict(src)
}

// Predict runs the read -> sample -> locate -> score -> record loop over an
// already-open source and aggregates whatever was collected when the stream
// ends or the budget is exhausted.
func (p *Pipeline) Predict(src Source) Result {
	sampler := NewSampler(p.opts.DenseFrames, p.opts.SparseEvery)
	budget := NewBudget(p.opts.MaxFrames, p.opts.TimeLimit)
	recorder := annotate.NewRecorder(p.opts.SaveLimit, p.opts.PreviewWidth, p.opts.JPEGQuality)

	var scores []float64

	for !budget.Exceeded() {
		frame, ordinal, ok := src.Next()
		if !ok {
			break
		}
		budget.CountFrame()

		if !sampler.Select(ordinal) {
			continue
		}

		frameScores, scored := p.analyzeFrame(frame, ordinal)
		scores = append(scores, frameScores...)

		// A frame without scored faces never consumes a preview slot
		if len(scored) > 0 && !recorder.Full() {
			if img, err := frame.ToImage(); err == nil {
				recorder.Record(img, scored)
			}
		}
	}

	if budget.Exceeded() {
		log.Debugf("Frame budget exhausted after %d frames, aggregating partial results", budget.FramesRead())
	}

	label, confidence := Aggregate(scores)
	return Result{
		Label:      label,
		Confidence: confidence,
		Frames:     recorder.Frames(),
	}
}

// analyzeFrame locates and scores every face in one frame. Per-face scoring
// failures are skipped explicitly; they never abort the rest of the video.
func (p *Pipeline) analyzeFrame(frame gocv.Mat, ordinal int) ([]float64, []annotate.ScoredFace) {
	faces := p.locator.Locate(frame)
	if len(faces) == 0 {
		return nil, nil
	}

	scores := make([]float64, 0, len(faces))
	scored := make([]annotate.ScoredFace, 0, len(faces))

	for i := range faces {
		prob, err := p.scorer.Score(faces[i].Crop)
		faces[i].Release()
		if err != nil {
			log.Debugf("Skipping face on frame %d: %v", ordinal, err)
			continue
		}

		scores = append(scores, prob)
		scored = append(scored, annotate.ScoredFace{
			Box:      faces[i].Box,
			FakeProb: prob,
		})
	}

	return scores, scored
}

func errorResult() Result {
	return Result{
		Label:      LabelError,
		Confidence: 0.0,
		Frames:     []string{},
	}
}
