package pipeline

import (
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/smegmarip/deepfake-sentinel/internal/annotate"
	"github.com/smegmarip/deepfake-sentinel/pkg/utils"
)

// PredictImage classifies a single photograph. Phone uploads routinely carry
// EXIF rotation, so orientation is corrected before detection; a sideways
// face is otherwise invisible to the detector.
func (p *Pipeline) PredictImage(path string) Result {
	img, err := utils.LoadOrientedImage(path)
	if err != nil {
		log.Warnf("Cannot decode image %s: %v", path, err)
		return errorResult()
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		log.Warnf("Cannot convert image %s: %v", path, err)
		return errorResult()
	}
	defer rgb.Close()

	// The locator contract takes decoder-order (BGR) frames
	frame := gocv.NewMat()
	defer frame.Close()
	gocv.CvtColor(rgb, &frame, gocv.ColorRGBToBGR)

	recorder := annotate.NewRecorder(1, p.opts.PreviewWidth, p.opts.JPEGQuality)

	scores, scored := p.analyzeFrame(frame, 1)
	if len(scored) > 0 {
		recorder.Record(img, scored)
	}

	label, confidence := Aggregate(scores)
	return Result{
		Label:      label,
		Confidence: confidence,
		Frames:     recorder.Frames(),
	}
}
