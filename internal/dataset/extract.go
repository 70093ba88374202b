package dataset

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/smegmarip/deepfake-sentinel/internal/detect"
	"github.com/smegmarip/deepfake-sentinel/internal/video"
	"github.com/smegmarip/deepfake-sentinel/pkg/utils"
)

const (
	// framesPerVideo caps how many face frames each video contributes
	framesPerVideo = 30
	// cropMargin pads the detected box so crops keep facial context
	cropMargin = 50
	// cropSize is the side length of the saved training crops
	cropSize = 256
	jpegExt  = ".jpg"
)

// Extractor turns the labeled videos of a master CSV into face crops laid out
// as <outputDir>/{real,fake}/<videoID>/frame_NNN.jpg
type Extractor struct {
	locator   *detect.Locator
	outputDir string
	workers   int
}

// NewExtractor builds an extractor. workers <= 0 uses one worker per CPU.
func NewExtractor(locator *detect.Locator, outputDir string, workers int) *Extractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Extractor{
		locator:   locator,
		outputDir: outputDir,
		workers:   workers,
	}
}

// Run processes every entry of the master CSV with a fixed worker pool.
// Individual video failures are logged and skipped so a corrupt file cannot
// sink the whole extraction.
func (e *Extractor) Run(masterCSV string) error {
	entries, err := ReadMasterCSV(masterCSV)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no videos listed in %s", masterCSV)
	}

	// Start from a clean output tree so stale crops from a previous run
	// cannot mix into the new dataset
	if err := os.RemoveAll(e.outputDir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	for _, sub := range []string{"real", "fake"} {
		if err := os.MkdirAll(filepath.Join(e.outputDir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Infof("Extracting faces from %d videos with %d workers", len(entries), e.workers)

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	tasks := make(chan Entry)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range tasks {
				if err := e.processVideo(entry); err != nil {
					log.Warnf("Skipping %s: %v", entry.VideoPath, err)
				}
				bar.Add(1)
			}
		}()
	}

	for _, entry := range entries {
		tasks <- entry
	}
	close(tasks)
	wg.Wait()

	return nil
}

// processVideo saves up to framesPerVideo face crops from one video. On error
// its partial output directory is removed so corrupted sets never survive.
func (e *Extractor) processVideo(entry Entry) (err error) {
	videoID := strings.TrimSuffix(filepath.Base(entry.VideoPath), filepath.Ext(entry.VideoPath))

	labelDir := "fake"
	if entry.Label == LabelReal {
		labelDir = "real"
	}
	outputDir := filepath.Join(e.outputDir, labelDir, videoID)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create video directory: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(outputDir)
		}
	}()

	src, err := video.Open(entry.VideoPath)
	if err != nil {
		return err
	}
	defer src.Close()

	saved := 0
	for saved < framesPerVideo {
		frame, _, ok := src.Next()
		if !ok {
			break
		}

		faces := e.locator.Locate(frame)
		if len(faces) == 0 {
			continue
		}

		// Only the most prominent face per frame goes into the dataset
		outPath := filepath.Join(outputDir, fmt.Sprintf("frame_%03d%s", saved, jpegExt))
		writeErr := saveCrop(frame, faces[0].Box, outPath)
		for _, f := range faces {
			f.Release()
		}
		if writeErr != nil {
			return writeErr
		}
		saved++
	}

	log.Debugf("Processed %d frames from %s", saved, videoID)
	return nil
}

// saveCrop cuts the box with margin out of the BGR frame, resizes it to the
// training resolution and writes it as JPEG
func saveCrop(frame gocv.Mat, box detect.BoundingBox, path string) error {
	width := frame.Cols()
	height := frame.Rows()

	x1 := utils.Clamp(box.XMin-cropMargin, 0, width)
	y1 := utils.Clamp(box.YMin-cropMargin, 0, height)
	x2 := utils.Clamp(box.XMax+cropMargin, 0, width)
	y2 := utils.Clamp(box.YMax+cropMargin, 0, height)
	if x2 <= x1 || y2 <= y1 {
		return fmt.Errorf("degenerate crop region")
	}

	region := frame.Region(image.Rect(x1, y1, x2, y2))
	defer region.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(region, &resized, image.Point{X: cropSize, Y: cropSize}, 0, 0, gocv.InterpolationLinear)

	if ok := gocv.IMWrite(path, resized); !ok {
		return fmt.Errorf("failed to write crop %s", path)
	}
	return nil
}
