package detect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// RemoteBackend detects faces through a standalone detection service
// (MediaPipe/YuNet class detectors behind a small HTTP API). The service
// accepts a JPEG upload and answers with fractional bounding boxes.
type RemoteBackend struct {
	BaseURL    string
	HTTPClient *http.Client
}

// remoteDetectResponse matches the detection service response schema
type remoteDetectResponse struct {
	Faces []struct {
		Box        RelativeBox `json:"box"`
		Confidence float64     `json:"confidence"`
	} `json:"faces"`
}

// NewRemoteBackend creates a client for the detection service
func NewRemoteBackend(baseURL string) *RemoteBackend {
	return &RemoteBackend{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the backend in logs
func (b *RemoteBackend) Name() string {
	return "remote"
}

// Detect encodes the frame as JPEG and posts it to the detection endpoint
func (b *RemoteBackend) Detect(frame gocv.Mat) ([]Candidate, error) {
	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	url := fmt.Sprintf("%s/detect", b.BaseURL)

	// Create multipart form
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequest("POST", url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result remoteDetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.Faces))
	for _, f := range result.Faces {
		candidates = append(candidates, Candidate{
			Box:        f.Box,
			Confidence: f.Confidence,
		})
	}

	return candidates, nil
}

// Health checks if the detection service is available
func (b *RemoteBackend) Health() error {
	url := fmt.Sprintf("%s/health", b.BaseURL)

	resp, err := b.HTTPClient.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// Close is a no-op; the backend holds no local resources
func (b *RemoteBackend) Close() error {
	return nil
}
