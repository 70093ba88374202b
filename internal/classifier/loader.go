package classifier

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// LoadFunc produces a loaded Handle. The default deserializes ONNX weights;
// alternate functions exist for tests and custom backends.
type LoadFunc func() (*Handle, error)

// Loader holds the process-wide classifier handle and guards its one-time
// initialization. Deserialization takes long enough that it must not block
// startup, so loading is deferred to first demand (or a background warmup).
//
// State machine: Unloaded -> Loading -> Loaded (terminal). A failed load
// returns the loader to Unloaded so a later call can retry. Concurrent first
// callers serialize on the mutex: exactly one load runs, and everyone that
// arrives during it receives the same outcome.
type Loader struct {
	mu     sync.Mutex
	handle *Handle
	loaded atomic.Bool
	loadFn LoadFunc
}

// NewLoader creates a loader that reads ONNX weights from modelPath onto the
// given device ("cpu" or "cuda")
func NewLoader(modelPath, device string) *Loader {
	return &Loader{
		loadFn: func() (*Handle, error) {
			return loadONNX(modelPath, device)
		},
	}
}

// NewLoaderFunc creates a loader around a custom load function
func NewLoaderFunc(fn LoadFunc) *Loader {
	return &Loader{loadFn: fn}
}

// EnsureLoaded returns the shared handle, loading it on first demand.
// Idempotent: once a handle exists every caller receives it without
// re-running initialization. On failure the loader stays unloaded and the
// error is returned; the next call retries.
func (l *Loader) EnsureLoaded() (*Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		return l.handle, nil
	}

	handle, err := l.loadFn()
	if err != nil {
		log.Errorf("Model load failed: %v", err)
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	l.handle = handle
	l.loaded.Store(true)
	log.Info("Classifier model loaded")
	return l.handle, nil
}

// Loaded reports whether a handle exists, without blocking on an in-flight load
func (l *Loader) Loaded() bool {
	return l.loaded.Load()
}

// Warmup kicks off a best-effort background load so the first request does
// not pay the deserialization cost. Errors are logged, not surfaced; the
// first real request retries.
func (l *Loader) Warmup() {
	go func() {
		if _, err := l.EnsureLoaded(); err != nil {
			log.Warnf("Model warmup failed (will retry on first request): %v", err)
		}
	}()
}

// loadONNX deserializes the classifier weights and binds them to a device
func loadONNX(modelPath, device string) (*Handle, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not accessible: %w", err)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to read model weights: %s", modelPath)
	}

	var backend gocv.NetBackendType
	var target gocv.NetTargetType
	switch device {
	case "cpu":
		backend = gocv.NetBackendDefault
		target = gocv.NetTargetCPU
	case "cuda":
		backend = gocv.NetBackendCUDA
		target = gocv.NetTargetCUDA
	default:
		net.Close()
		return nil, fmt.Errorf("unsupported device: %s", device)
	}

	if err := net.SetPreferableBackend(backend); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set backend for device %s: %w", device, err)
	}
	if err := net.SetPreferableTarget(target); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set target for device %s: %w", device, err)
	}

	log.Infof("Loaded classifier weights from %s (device=%s)", modelPath, device)
	return &Handle{net: net}, nil
}
