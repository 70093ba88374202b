package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smegmarip/deepfake-sentinel/internal/dataset"
	"github.com/smegmarip/deepfake-sentinel/internal/detect"
)

var (
	combineFaceForensicsDir string
	combineCelebDFDir       string
	combineOutput           string

	extractMasterCSV  string
	extractOutputDir  string
	extractCascade    string
	extractWorkers    int
	extractMinFace    int
	extractConfidence float64
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Training dataset preparation tools",
}

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Unify FaceForensics++ and Celeb-DF metadata into a master CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		_, err := dataset.Combine(combineFaceForensicsDir, combineCelebDFDir, combineOutput)
		return err
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract labeled face crops from the videos in a master CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runExtract()
	},
}

func init() {
	combineCmd.Flags().StringVar(&combineFaceForensicsDir, "faceforensics", "", "Path to the FaceForensics++ root folder")
	combineCmd.Flags().StringVar(&combineCelebDFDir, "celebdf", "", "Path to the Celeb-DF root folder")
	combineCmd.Flags().StringVarP(&combineOutput, "output", "o", "master_data.csv", "Path for the master CSV")
	combineCmd.MarkFlagRequired("faceforensics")
	combineCmd.MarkFlagRequired("celebdf")

	extractCmd.Flags().StringVarP(&extractMasterCSV, "input", "i", "", "Path to the master CSV")
	extractCmd.Flags().StringVarP(&extractOutputDir, "output", "o", "processed_faces", "Output directory for face crops")
	extractCmd.Flags().StringVar(&extractCascade, "cascade", "", "Path to the face cascade XML")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "Worker count (0 = one per CPU)")
	extractCmd.Flags().IntVar(&extractMinFace, "min-face-size", 30, "Minimum face side length in pixels")
	extractCmd.Flags().Float64Var(&extractConfidence, "detection-threshold", 0.4, "Minimum detection confidence")
	extractCmd.MarkFlagRequired("input")
	extractCmd.MarkFlagRequired("cascade")

	datasetCmd.AddCommand(combineCmd)
	datasetCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(datasetCmd)
}

func runExtract() error {
	backend, err := detect.NewCascadeBackend(extractCascade)
	if err != nil {
		return fmt.Errorf("detector setup failed: %w", err)
	}

	locator := detect.NewLocator(backend, extractMinFace, extractConfidence)
	defer locator.Close()

	return dataset.NewExtractor(locator, extractOutputDir, extractWorkers).Run(extractMasterCSV)
}
