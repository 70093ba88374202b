package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Backend names accepted for DETECTOR_BACKEND
const (
	BackendCascade = "cascade"
	BackendRemote  = "remote"
)

// Load builds the service configuration from environment variables,
// falling back to defaults for anything unset.
func Load() (*Config, error) {
	config := &Config{
		// Default values
		ListenAddr:          ":8000",
		Device:              "cpu",
		DetectorBackend:     BackendCascade,
		MinFaceSize:         30,
		MinDetectConfidence: 0.4,
		MaxFrames:           80,
		TimeLimit:           15 * time.Second,
		SaveLimit:           4,
		PreviewWidth:        640,
		JPEGQuality:         80,
		MaxConcurrent:       2,
	}

	// Override defaults with environment settings
	if val := getStringSetting("SENTINEL_LISTEN_ADDR"); val != "" {
		config.ListenAddr = val
	}
	if val := getStringSetting("SENTINEL_MODEL_PATH"); val != "" {
		config.ModelPath = val
	}
	if val := getStringSetting("SENTINEL_DEVICE"); val != "" {
		config.Device = val
	}
	if val := getStringSetting("SENTINEL_DETECTOR_BACKEND"); val != "" {
		config.DetectorBackend = val
	}
	if val := getStringSetting("SENTINEL_CASCADE_PATH"); val != "" {
		config.CascadePath = val
	}
	if val := getStringSetting("SENTINEL_DETECTOR_SERVICE_URL"); val != "" {
		config.DetectorServiceURL = val
	}
	if val := getIntSetting("SENTINEL_MIN_FACE_SIZE"); val > 0 {
		config.MinFaceSize = val
	}
	if val := getFloatSetting("SENTINEL_MIN_DETECT_CONFIDENCE"); val > 0 {
		config.MinDetectConfidence = val
	}
	if val := getIntSetting("SENTINEL_MAX_FRAMES"); val > 0 {
		config.MaxFrames = val
	}
	if val := getIntSetting("SENTINEL_TIME_LIMIT_SECONDS"); val > 0 {
		config.TimeLimit = time.Duration(val) * time.Second
	}
	if val := getIntSetting("SENTINEL_SAVE_LIMIT"); val > 0 {
		config.SaveLimit = val
	}
	if val := getIntSetting("SENTINEL_PREVIEW_WIDTH"); val > 0 {
		config.PreviewWidth = val
	}
	if val := getIntSetting("SENTINEL_JPEG_QUALITY"); val > 0 && val <= 100 {
		config.JPEGQuality = val
	}
	if val := getIntSetting("SENTINEL_MAX_CONCURRENT"); val > 0 {
		config.MaxConcurrent = val
	}

	// Validate required settings
	if config.ModelPath == "" {
		return nil, fmt.Errorf("SENTINEL_MODEL_PATH is required")
	}

	switch config.DetectorBackend {
	case BackendCascade:
		if config.CascadePath == "" {
			return nil, fmt.Errorf("SENTINEL_CASCADE_PATH is required for the cascade backend")
		}
	case BackendRemote:
		// Resolve detector service URL with auto-detection
		config.DetectorServiceURL = resolveServiceURL(config.DetectorServiceURL, "face-detector", "6001")
		log.Infof("Remote face detector configured at: %s", config.DetectorServiceURL)
	default:
		return nil, fmt.Errorf("unknown detector backend: %s", config.DetectorBackend)
	}

	return config, nil
}

// getStringSetting retrieves a string setting from the environment
func getStringSetting(key string) string {
	return os.Getenv(key)
}

// getIntSetting retrieves an integer setting from the environment
func getIntSetting(key string) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		log.Warnf("Invalid integer for %s: %q, using default", key, val)
	}
	return 0
}

// getFloatSetting retrieves a float setting from the environment
func getFloatSetting(key string) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
		log.Warnf("Invalid float for %s: %q, using default", key, val)
	}
	return 0.0
}

// resolveServiceURL resolves the service URL with proper DNS lookup.
// Handles IP addresses, hostnames, container names, and localhost.
//
// Parameters:
//   - configuredURL: The URL from configuration (may be empty)
//   - defaultContainerName: Default container name for auto-detection
//   - defaultPort: Default port number
//
// Returns: Resolved URL
func resolveServiceURL(configuredURL string, defaultContainerName string, defaultPort string) string {
	const defaultScheme = "http"
	var hardcodedFallback = fmt.Sprintf("%s://%s:%s", defaultScheme, defaultContainerName, defaultPort)

	// If no URL configured, use fallback
	if configuredURL == "" {
		log.Infof("No detector service URL configured, using default: %s", hardcodedFallback)
		return hardcodedFallback
	}

	// Parse the URL
	parsedURL, err := url.Parse(configuredURL)
	if err != nil {
		log.Warnf("Failed to parse service URL '%s': %v, using fallback", configuredURL, err)
		return hardcodedFallback
	}

	hostname := parsedURL.Hostname()
	port := parsedURL.Port()
	scheme := parsedURL.Scheme

	// Default scheme if not specified
	if scheme == "" {
		scheme = defaultScheme
	}

	// Default port if not specified
	if port == "" {
		port = defaultPort
	}

	// Case 1: localhost - use as-is
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return fmt.Sprintf("%s://%s:%s", scheme, hostname, port)
	}

	// Case 2: Already an IP address - use as-is
	if net.ParseIP(hostname) != nil {
		return fmt.Sprintf("%s://%s:%s", scheme, hostname, port)
	}

	// Case 3: Hostname or container name - resolve via DNS
	addrs, err := net.LookupIP(hostname)
	if err != nil || len(addrs) == 0 {
		log.Warnf("DNS lookup failed for '%s', using hostname as-is", hostname)
		// Return original URL even if DNS fails - it might still work
		return fmt.Sprintf("%s://%s:%s", scheme, hostname, port)
	}

	// Use the first resolved IP address
	resolvedIP := addrs[0].String()
	resolvedURL := fmt.Sprintf("%s://%s:%s", scheme, resolvedIP, port)
	log.Infof("Resolved '%s' to %s", hostname, resolvedURL)
	return resolvedURL
}
