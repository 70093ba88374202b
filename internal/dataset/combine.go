package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Labels used throughout the training corpus
const (
	LabelReal = 0
	LabelFake = 1
)

// ffSubfolders are the FaceForensics++ manipulation sets plus the pristine
// originals. Every set except "original" is a forgery.
var ffSubfolders = []string{
	"DeepFakeDetection",
	"Deepfakes",
	"Face2Face",
	"FaceShifter",
	"FaceSwap",
	"NeuralTextures",
	"original",
}

// celebDFListFile names the Celeb-DF annotation file: one "label path" pair
// per line, paths relative to the Celeb-DF root.
const celebDFListFile = "new_celebd_df_list.txt"

// Entry is one labeled video in the master index
type Entry struct {
	VideoPath string
	Label     int
}

// Combine unifies FaceForensics++ and Celeb-DF metadata into a single master
// CSV with a video_path,label header. Missing source folders are skipped with
// a warning rather than failing the whole run.
func Combine(faceForensicsDir, celebDFDir, outputPath string) (int, error) {
	var entries []Entry

	log.Info("Processing FaceForensics++ data...")
	for _, folder := range ffSubfolders {
		label := LabelFake
		if folder == "original" {
			label = LabelReal
		}

		videoDir := filepath.Join(faceForensicsDir, folder)
		found, err := collectVideos(videoDir, label)
		if err != nil {
			log.Warnf("Folder not found at %s, skipping: %v", videoDir, err)
			continue
		}
		entries = append(entries, found...)
	}

	log.Info("Processing Celeb-DF data...")
	celebEntries, err := parseCelebDFList(celebDFDir)
	if err != nil {
		log.Warnf("Celeb-DF list not usable at %s, skipping: %v", celebDFDir, err)
	} else {
		entries = append(entries, celebEntries...)
	}

	if err := writeMasterCSV(outputPath, entries); err != nil {
		return 0, err
	}

	log.Infof("Master metadata created with %d videos at %s", len(entries), outputPath)
	return len(entries), nil
}

// collectVideos lists the .mp4 files directly under dir
func collectVideos(dir string, label int) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".mp4") {
			continue
		}
		entries = append(entries, Entry{
			VideoPath: filepath.Join(dir, item.Name()),
			Label:     label,
		})
	}
	return entries, nil
}

// parseCelebDFList reads the Celeb-DF annotation file and resolves each
// relative video path against the dataset root
func parseCelebDFList(celebDFDir string) ([]Entry, error) {
	listPath := filepath.Join(celebDFDir, celebDFListFile)
	f, err := os.Open(listPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed line %d in %s: %q", lineNo, listPath, line)
		}

		label, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid label on line %d in %s: %w", lineNo, listPath, err)
		}

		entries = append(entries, Entry{
			VideoPath: filepath.Join(celebDFDir, parts[1]),
			Label:     label,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func writeMasterCSV(outputPath string, entries []Entry) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create master CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"video_path", "label"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.VideoPath, strconv.Itoa(e.Label)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMasterCSV loads the entries written by Combine
func ReadMasterCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open master CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse master CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip the header row if present
	start := 0
	if records[0][0] == "video_path" {
		start = 1
	}

	entries := make([]Entry, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 2 {
			return nil, fmt.Errorf("malformed record %d in %s", i+1, path)
		}
		label, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid label in record %d of %s: %w", i+1, path, err)
		}
		entries = append(entries, Entry{VideoPath: rec[0], Label: label})
	}
	return entries, nil
}
