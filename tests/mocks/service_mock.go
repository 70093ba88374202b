package mocks

import (
	"sync"

	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
)

// MockService is a configurable stand-in for the analysis service used by
// HTTP handler tests
type MockService struct {
	mu sync.Mutex

	ReadyResult bool
	Result      pipeline.Result
	Err         error

	VideoCalls []string
	ImageCalls []string
}

// NewMockService returns a ready service that labels everything Real
func NewMockService() *MockService {
	return &MockService{
		ReadyResult: true,
		Result: pipeline.Result{
			Label:      pipeline.LabelReal,
			Confidence: 0.12,
			Frames:     []string{},
		},
	}
}

func (m *MockService) Ready() bool {
	return m.ReadyResult
}

func (m *MockService) PredictVideo(path string) (pipeline.Result, error) {
	m.mu.Lock()
	m.VideoCalls = append(m.VideoCalls, path)
	m.mu.Unlock()
	return m.Result, m.Err
}

func (m *MockService) PredictImage(path string) (pipeline.Result, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, path)
	m.mu.Unlock()
	return m.Result, m.Err
}
