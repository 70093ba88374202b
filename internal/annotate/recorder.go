package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// Recorder collects a bounded number of annotated preview frames per video.
// Once the cap is reached recording becomes a no-op, so visual capture cost
// never grows with video length. First come, first kept; no eviction.
type Recorder struct {
	limit        int
	previewWidth int
	quality      int
	frames       []string
}

// NewRecorder creates a recorder that keeps at most limit frames, resized to
// previewWidth and encoded as base64 JPEG at the given quality
func NewRecorder(limit, previewWidth, quality int) *Recorder {
	return &Recorder{
		limit:        limit,
		previewWidth: previewWidth,
		quality:      quality,
		frames:       make([]string, 0, limit),
	}
}

// Full reports whether the cap has been reached
func (r *Recorder) Full() bool {
	return len(r.frames) >= r.limit
}

// Record annotates the frame and stores its encoded preview. Returns false
// without doing any work once the cap is reached; encoding failures drop the
// frame but never the analysis.
func (r *Recorder) Record(frame image.Image, faces []ScoredFace) bool {
	if r.Full() {
		return false
	}

	annotated := Render(frame, faces)
	encoded, err := EncodePreview(annotated, r.previewWidth, r.quality)
	if err != nil {
		return false
	}

	r.frames = append(r.frames, encoded)
	return true
}

// Frames returns the collected previews in capture order
func (r *Recorder) Frames() []string {
	return r.frames
}

// EncodePreview resizes an image to the target width preserving aspect ratio
// and encodes it as base64 JPEG suitable for a JSON payload
func EncodePreview(img image.Image, width, quality int) (string, error) {
	resized := imaging.Resize(img, width, 0, imaging.Linear)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
