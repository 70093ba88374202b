package detect

import (
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Backend is a pluggable face detector. Implementations emit relative
// (fractional) boxes in detector order; resolution against the frame and
// size filtering belong to the Locator.
type Backend interface {
	Name() string
	Detect(frame gocv.Mat) ([]Candidate, error)
	Close() error
}

// Locator adapts a detector backend into the face-region contract used by the
// pipeline: absolute clamped boxes, minimum-size filtering, duplicate
// suppression, RGB crops. Backend failures never propagate; a failed frame
// simply has no faces.
type Locator struct {
	backend       Backend
	minFaceSize   int
	minConfidence float64
}

// duplicateIoU is the overlap above which two detections are treated as the
// same face. Detectors emit near-duplicate boxes around a strong detection;
// scoring them all would double-weight that face in aggregation.
const duplicateIoU = 0.5

// NewLocator wraps a backend with the given filtering thresholds
func NewLocator(backend Backend, minFaceSize int, minConfidence float64) *Locator {
	return &Locator{
		backend:       backend,
		minFaceSize:   minFaceSize,
		minConfidence: minConfidence,
	}
}

// Locate finds faces in a BGR frame. Returned crops are RGB (the channel order
// the classifier was trained on); the conversion happens once here. Each
// returned Face owns its crop and must be released by the caller.
func (l *Locator) Locate(frame gocv.Mat) []Face {
	if frame.Empty() {
		return nil
	}

	candidates, err := l.backend.Detect(frame)
	if err != nil {
		log.Debugf("Face detection failed (%s): %v, treating as no faces", l.backend.Name(), err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	width := frame.Cols()
	height := frame.Rows()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(frame, &rgb, gocv.ColorBGRToRGB)

	var faces []Face
	for _, cand := range candidates {
		if cand.Confidence < l.minConfidence {
			continue
		}

		box, ok := ResolveBox(cand.Box, width, height)
		if !ok {
			continue
		}

		// Reject tiny noise boxes that destabilize the classifier
		if box.Width() < l.minFaceSize || box.Height() < l.minFaceSize {
			continue
		}

		// First emission wins among overlapping detections
		if overlapsKept(faces, box) {
			continue
		}

		region := rgb.Region(box.Rect())
		crop := region.Clone()
		region.Close()

		faces = append(faces, Face{
			Box:        box,
			Confidence: cand.Confidence,
			Crop:       crop,
		})
	}

	return faces
}

// overlapsKept reports whether box covers a face that is already kept
func overlapsKept(faces []Face, box BoundingBox) bool {
	for i := range faces {
		if faces[i].Box.IoU(box) > duplicateIoU {
			return true
		}
	}
	return false
}

// Close releases the underlying backend
func (l *Locator) Close() error {
	return l.backend.Close()
}
