package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Server exposes the analysis service over HTTP
type Server struct {
	service Service
	// slots bounds concurrent analyses so uploads queue instead of
	// oversubscribing the host
	slots chan struct{}
}

// New creates a server around a service, allowing at most maxConcurrent
// analyses in flight
func New(service Service, maxConcurrent int) *Server {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Server{
		service: service,
		slots:   make(chan struct{}, maxConcurrent),
	}
}

// Routes builds the HTTP handler with CORS and request logging applied
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/predict_video/", s.handlePredictVideo)
	mux.HandleFunc("/predict_image/", s.handlePredictImage)
	return corsMiddleware(requestLogMiddleware(mux))
}

// acquire takes an analysis slot; release with releaseSlot
func (s *Server) acquire() {
	s.slots <- struct{}{}
}

func (s *Server) release() {
	<-s.slots
}

// corsMiddleware allows cross-origin browser clients to call the API
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware tags each request with an id and logs its outcome
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		log.Debugf("[%s] %s %s", requestID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// writeJSON serializes a response body with the given status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("Failed to write response: %v", err)
	}
}

// writeError serializes an error payload with the given status
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
