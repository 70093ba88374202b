package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
)

// maxUploadBytes caps the multipart memory buffer; larger uploads spill to disk
const maxUploadBytes = 64 << 20

// handleHealth answers liveness probes and tells the UI whether the model is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "active",
		ModelLoaded: s.service.Ready(),
	})
}

// handlePredictVideo accepts a video upload, runs the pipeline against a
// temporary copy, and always deletes that copy before returning
func (s *Server) handlePredictVideo(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, s.service.PredictVideo)
}

// handlePredictImage is the still-photo variant of handlePredictVideo
func (s *Server) handlePredictImage(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, s.service.PredictImage)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, predict func(string) (pipeline.Result, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	tmpPath, err := saveUpload(file, header.Filename)
	if err != nil {
		log.Errorf("Failed to save upload %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			log.Warnf("Failed to remove temp file %s: %v", tmpPath, err)
		}
	}()

	s.acquire()
	defer s.release()

	result, err := predict(tmpPath)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Model not loaded on server.")
		return
	}

	log.Infof("Analyzed %s: label=%s confidence=%.3f previews=%d",
		header.Filename, result.Label, result.Confidence, len(result.Frames))

	writeJSON(w, http.StatusOK, PredictResponse{
		Filename:   header.Filename,
		Label:      result.Label,
		Confidence: result.Confidence,
		Frames:     result.Frames,
	})
}

// saveUpload writes the upload to a temp file, keeping the original
// extension so the container format is recognizable to the decoder
func saveUpload(file multipart.File, filename string) (string, error) {
	ext := filepath.Ext(filename)

	tmp, err := os.CreateTemp("", "sentinel-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmp.Name(), nil
}
