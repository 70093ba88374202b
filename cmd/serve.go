package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smegmarip/deepfake-sentinel/internal/classifier"
	"github.com/smegmarip/deepfake-sentinel/internal/config"
	"github.com/smegmarip/deepfake-sentinel/internal/detect"
	"github.com/smegmarip/deepfake-sentinel/internal/pipeline"
	"github.com/smegmarip/deepfake-sentinel/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the classification HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	locator, err := newLocator(cfg)
	if err != nil {
		return err
	}
	defer locator.Close()

	loader := classifier.NewLoader(cfg.ModelPath, cfg.Device)
	loader.Warmup()

	service := server.NewAnalyzer(loader, locator, pipeline.OptionsFromConfig(cfg))
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(service, cfg.MaxConcurrent).Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s (detector=%s, device=%s)", cfg.ListenAddr, cfg.DetectorBackend, cfg.Device)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newLocator builds the configured face detection stack
func newLocator(cfg *config.Config) (*detect.Locator, error) {
	var backend detect.Backend
	switch cfg.DetectorBackend {
	case config.BackendCascade:
		cascade, err := detect.NewCascadeBackend(cfg.CascadePath)
		if err != nil {
			return nil, fmt.Errorf("detector setup failed: %w", err)
		}
		backend = cascade
	case config.BackendRemote:
		remote := detect.NewRemoteBackend(cfg.DetectorServiceURL)
		if err := remote.Health(); err != nil {
			log.Warnf("Detector service not reachable yet: %v", err)
		}
		backend = remote
	default:
		return nil, fmt.Errorf("unknown detector backend: %s", cfg.DetectorBackend)
	}

	return detect.NewLocator(backend, cfg.MinFaceSize, cfg.MinDetectConfidence), nil
}
