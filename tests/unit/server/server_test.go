package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
	"github.com/smegmarip/deepfake-sentinel/internal/server"
	"github.com/smegmarip/deepfake-sentinel/tests/mocks"
)

func newTestServer(svc server.Service) http.Handler {
	return server.New(svc, 2).Routes()
}

// uploadRequest builds a multipart POST with a "file" field
func uploadRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	svc := mocks.NewMockService()
	handler := newTestServer(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "active", resp["status"])
	assert.Equal(t, true, resp["model_loaded"])
}

func TestHealth_ModelNotLoaded(t *testing.T) {
	svc := mocks.NewMockService()
	svc.ReadyResult = false
	handler := newTestServer(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["model_loaded"])
}

func TestCORSHeaders(t *testing.T) {
	handler := newTestServer(mocks.NewMockService())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/predict_video/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestServer(mocks.NewMockService())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPredictVideo_Success(t *testing.T) {
	svc := mocks.NewMockService()
	svc.Result = pipeline.Result{
		Label:      pipeline.LabelFake,
		Confidence: 0.87,
		Frames:     []string{"ZmFrZWZyYW1l"},
	}
	handler := newTestServer(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/predict_video/", "clip.mp4", []byte("video-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "clip.mp4", resp.Filename)
	assert.Equal(t, pipeline.LabelFake, resp.Label)
	assert.InDelta(t, 0.87, resp.Confidence, 1e-9)
	assert.Len(t, resp.Frames, 1)

	// The service analyzed a temp copy, not the original filename
	require.Len(t, svc.VideoCalls, 1)
	assert.NotEqual(t, "clip.mp4", svc.VideoCalls[0])
}

func TestPredictImage_Success(t *testing.T) {
	svc := mocks.NewMockService()
	handler := newTestServer(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/predict_image/", "photo.jpg", []byte("image-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.ImageCalls, 1)
}

func TestPredictVideo_ModelUnavailable(t *testing.T) {
	svc := mocks.NewMockService()
	svc.Err = errors.New("failed to load model")
	handler := newTestServer(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/predict_video/", "clip.mp4", []byte("video-bytes")))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Model not loaded on server.", resp.Error)
}

func TestPredictVideo_MissingFileField(t *testing.T) {
	handler := newTestServer(mocks.NewMockService())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict_video/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictVideo_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(mocks.NewMockService())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict_video/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth_UnknownPath(t *testing.T) {
	handler := newTestServer(mocks.NewMockService())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
