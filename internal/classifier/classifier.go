package classifier

import (
	"fmt"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// Handle wraps the loaded classifier network. It is created once by the
// Loader and shared read-only by all pipeline invocations; the forward pass
// itself is serialized because an OpenCV net is not reentrant. Faces are
// independent, so this is a throughput concern, not a correctness one.
type Handle struct {
	mu  sync.Mutex
	net gocv.Net
}

// Score runs one face crop through the model and returns the probability
// that the face is synthetic (the softmax weight of output index 1).
// The crop must be RGB.
func (h *Handle) Score(crop gocv.Mat) (float64, error) {
	blob, err := Preprocess(crop)
	if err != nil {
		return 0, fmt.Errorf("preprocess failed: %w", err)
	}
	defer blob.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.net.SetInput(blob, "")
	out := h.net.Forward("")
	defer out.Close()

	if out.Empty() || out.Total() < 2 {
		return 0, fmt.Errorf("unexpected model output shape")
	}

	logitReal := out.GetFloatAt(0, 0)
	logitFake := out.GetFloatAt(0, 1)
	return Softmax2(logitReal, logitFake), nil
}

// Close releases the network
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.net.Close()
}

// Softmax2 returns the softmax weight of the second logit of a two-class
// output. Shifted by the max logit for numerical stability.
func Softmax2(a, b float32) float64 {
	m := math.Max(float64(a), float64(b))
	ea := math.Exp(float64(a) - m)
	eb := math.Exp(float64(b) - m)
	return eb / (ea + eb)
}
