package testutil

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnv holds the external resources integration tests run against
type TestEnv struct {
	t           *testing.T
	ModelPath   string
	CascadePath string
	VideoPath   string
	ImagePath   string
}

// SetupTestEnv reads integration fixture locations from the environment
func SetupTestEnv(t *testing.T) *TestEnv {
	return &TestEnv{
		t:           t,
		ModelPath:   os.Getenv("SENTINEL_TEST_MODEL"),
		CascadePath: os.Getenv("SENTINEL_TEST_CASCADE"),
		VideoPath:   os.Getenv("SENTINEL_TEST_VIDEO"),
		ImagePath:   os.Getenv("SENTINEL_TEST_IMAGE"),
	}
}

// RequireFixtures skips the test when any of the given fixture paths is unset
// or missing on disk
func (e *TestEnv) RequireFixtures(paths ...string) {
	e.t.Helper()
	for _, p := range paths {
		if p == "" {
			e.t.Skip("Skipping: integration fixtures not configured")
		}
		if _, err := os.Stat(p); err != nil {
			e.t.Skipf("Skipping: fixture %s not available", p)
		}
	}
}

// SkipIfShort skips integration-grade tests in short mode
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// SolidImage builds an opaque single-color test image
func SolidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// WriteTempJPEG encodes img into a temp file and returns its path. The file
// is removed on test cleanup.
func WriteTempJPEG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test-image.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
	return path
}
