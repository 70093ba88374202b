package server

// PredictResponse is the payload for both predict endpoints
type PredictResponse struct {
	Filename   string   `json:"filename"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Frames     []string `json:"frames"`
}

// HealthResponse reports service liveness and model state
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// ErrorResponse carries a human-readable failure reason
type ErrorResponse struct {
	Error string `json:"error"`
}
