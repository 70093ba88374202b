package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Source is one pipeline invocation's exclusive view of a decoded video:
// an ordered, finite sequence of frames. It is acquired at open and must be
// closed on every exit path.
type Source struct {
	capture *gocv.VideoCapture
	buf     gocv.Mat
	index   int
}

// Open opens the video container at path for decoding. A container that
// cannot be opened (corrupt, unsupported, empty) fails here, before any
// frame work happens.
func Open(path string) (*Source, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture: %w", err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture is not opened: %s", path)
	}

	return &Source{
		capture: capture,
		buf:     gocv.NewMat(),
	}, nil
}

// Next decodes the next frame and returns it with its 1-based ordinal.
// The returned Mat is a reused decode buffer, valid only until the next
// call; callers that keep pixels must clone. Returns ok=false at end of
// stream or on decode failure.
func (s *Source) Next() (gocv.Mat, int, bool) {
	if s.capture == nil {
		return gocv.Mat{}, 0, false
	}
	if !s.capture.Read(&s.buf) || s.buf.Empty() {
		return gocv.Mat{}, 0, false
	}
	s.index++
	return s.buf, s.index, true
}

// Close releases the decoder handle and the frame buffer
func (s *Source) Close() error {
	if !s.buf.Empty() {
		s.buf.Close()
	}
	if s.capture != nil {
		err := s.capture.Close()
		s.capture = nil
		return err
	}
	return nil
}
