package detect

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// CascadeBackend detects faces with an OpenCV Haar cascade. It runs fully
// in-process and is the default backend on hosts without a detector service.
// Detection is serialized: the underlying classifier is not reentrant.
type CascadeBackend struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	minSize    image.Point
}

// NewCascadeBackend loads the cascade description from the given XML path
func NewCascadeBackend(cascadePath string) (*CascadeBackend, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade file: %s", cascadePath)
	}

	return &CascadeBackend{
		classifier: classifier,
		minSize:    image.Point{X: 24, Y: 24},
	}, nil
}

// Name identifies the backend in logs
func (b *CascadeBackend) Name() string {
	return "cascade"
}

// Detect runs the cascade over a grayscale copy of the frame. Haar cascades do
// not score detections, so every emission carries confidence 1.0 and the
// minNeighbors grouping acts as the false-positive filter.
func (b *CascadeBackend) Detect(frame gocv.Mat) ([]Candidate, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	b.mu.Lock()
	rects := b.classifier.DetectMultiScaleWithParams(
		gray, 1.1, 5, 0, b.minSize, image.Point{},
	)
	b.mu.Unlock()

	width := float64(frame.Cols())
	height := float64(frame.Rows())

	candidates := make([]Candidate, 0, len(rects))
	for _, r := range rects {
		candidates = append(candidates, Candidate{
			Box: RelativeBox{
				XMin:   float64(r.Min.X) / width,
				YMin:   float64(r.Min.Y) / height,
				Width:  float64(r.Dx()) / width,
				Height: float64(r.Dy()) / height,
			},
			Confidence: 1.0,
		})
	}

	return candidates, nil
}

// Close releases the cascade classifier
func (b *CascadeBackend) Close() error {
	return b.classifier.Close()
}
