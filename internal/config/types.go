package config

import "time"

// Config holds service settings
type Config struct {
	ListenAddr          string
	ModelPath           string
	Device              string
	DetectorBackend     string
	CascadePath         string
	DetectorServiceURL  string
	MinFaceSize         int
	MinDetectConfidence float64
	MaxFrames           int
	TimeLimit           time.Duration
	SaveLimit           int
	PreviewWidth        int
	JPEGQuality         int
	MaxConcurrent       int
}
