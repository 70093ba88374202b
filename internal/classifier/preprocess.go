package classifier

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"runtime"

	"gocv.io/x/gocv"
)

// InputSize is the square model input resolution
const InputSize = 224

// ImageNet channel statistics the model was trained with
var (
	meanRGB = [3]float32{0.485, 0.456, 0.406}
	stdRGB  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocess converts an RGB face crop into the normalized NCHW float32 blob
// the model expects: resize to InputSize, scale to 0..1, per-channel
// mean/std normalization, channel-first layout.
// The returned Mat must be closed by the caller.
func Preprocess(crop gocv.Mat) (gocv.Mat, error) {
	if crop.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty face crop")
	}
	if crop.Channels() != 3 {
		return gocv.Mat{}, fmt.Errorf("expected 3-channel crop, got %d", crop.Channels())
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(crop, &resized, image.Pt(InputSize, InputSize), 0, 0, gocv.InterpolationLinear)

	pixels := resized.ToBytes()
	if len(pixels) != InputSize*InputSize*3 {
		return gocv.Mat{}, fmt.Errorf("unexpected pixel buffer size: %d", len(pixels))
	}

	// HWC uint8 -> CHW float32, normalized
	const plane = InputSize * InputSize
	raw := make([]byte, 3*plane*4)
	for i := 0; i < plane; i++ {
		for c := 0; c < 3; c++ {
			v := float32(pixels[i*3+c]) / 255.0
			norm := (v - meanRGB[c]) / stdRGB[c]
			offset := (c*plane + i) * 4
			binary.LittleEndian.PutUint32(raw[offset:], math.Float32bits(norm))
		}
	}

	// NewMatWithSizesFromBytes wraps the slice without copying; the blob must
	// own its pixels because raw has no live reference once we return
	wrapper, err := gocv.NewMatWithSizesFromBytes([]int{1, 3, InputSize, InputSize}, gocv.MatTypeCV32F, raw)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to build input blob: %w", err)
	}
	blob := wrapper.Clone()
	wrapper.Close()
	runtime.KeepAlive(raw)

	return blob, nil
}
