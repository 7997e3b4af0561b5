// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Flags for detect command
	inputFile string
	runID     string

	// Flags for align command
	inputFiles  []string
	rtOutFile   string
	areaOutFile string
	dbOutFile   string

	// Deconvolution flags
	pointsPerSide   int
	minChannels     int
	minIntensity    float64
	mergeDuplicates bool
	mergeTolerance  float64

	// Noise estimation flags
	noiseWindow    int
	noiseTolerance float64

	// Peak filtering flags
	rtMin         float64
	rtMax         float64
	cutoffPercent float64
	topNIons      int

	// Alignment flags
	rtTolerance    float64
	gapPenalty     float64
	minSimilarity  float64
	spectrumWeight float64
	sqrtTransform  bool
	minRowPeaks    int
	workers        int
)

var rootCmd = &cobra.Command{
	Use:   "gcalign",
	Short: "GCAlign - GC-MS peak detection and alignment tool",
	Long: `GCAlign detects chemical peaks in decoded GC-MS chromatograms and aligns
peak lists from multiple runs into a single consensus table.

Peaks are deconvolved per run with Biller-Biemann local-maximum detection
over noise-thresholded ion traces, then matched across runs by dynamic
programming over retention-time and mass-spectral similarity. Results can
be exported as CSV matrices or a SQLite database.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(alignCmd)

	// Detect command flags
	detectCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Decoded intensity matrix file, .csv or .json (required)")
	detectCmd.Flags().StringVar(&runID, "run", "", "Run identifier (defaults to input file name)")
	addDetectionFlags(detectCmd)

	// Align command flags
	alignCmd.Flags().StringSliceVarP(&inputFiles, "in", "i", nil, "Decoded intensity matrix files, repeatable (at least 2 required)")
	alignCmd.Flags().StringVar(&rtOutFile, "out-rt", "", "Output CSV file for the aligned retention-time matrix")
	alignCmd.Flags().StringVar(&areaOutFile, "out-area", "", "Output CSV file for the aligned area matrix")
	alignCmd.Flags().StringVar(&dbOutFile, "db", "", "Output SQLite database file")
	addDetectionFlags(alignCmd)
	alignCmd.Flags().Float64Var(&rtTolerance, "rt-tolerance", 2.5, "Retention time tolerance in seconds for matching peaks")
	alignCmd.Flags().Float64Var(&gapPenalty, "gap", 0.3, "Gap penalty for unmatched peaks")
	alignCmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0.3, "Minimum similarity for a match to be accepted")
	alignCmd.Flags().Float64Var(&spectrumWeight, "spectrum-weight", 0.5, "Weight of spectral similarity vs retention time, in [0,1]")
	alignCmd.Flags().BoolVar(&sqrtTransform, "sqrt-transform", true, "Square-root scale intensities before spectral comparison")
	alignCmd.Flags().IntVar(&minRowPeaks, "min-row-peaks", 0, "Drop aligned rows with fewer real peaks than this (0 = keep all)")
	alignCmd.Flags().IntVar(&workers, "workers", 4, "Worker threads for detection and candidate alignments")

	alignCmd.MarkFlagRequired("in")
	detectCmd.MarkFlagRequired("in")
}

// addDetectionFlags registers the flags shared by detect and align.
func addDetectionFlags(c *cobra.Command) {
	c.Flags().IntVar(&pointsPerSide, "points-per-side", 3, "Half-width of the apex detection window in scans")
	c.Flags().IntVar(&minChannels, "min-channels", 3, "Channels that must maximise at or adjacent to a scan")
	c.Flags().Float64Var(&minIntensity, "min-intensity", 0, "Minimum summed spectrum intensity for a peak")
	c.Flags().BoolVar(&mergeDuplicates, "merge-duplicates", false, "Fold peaks with sub-resolution apex spacing into one")
	c.Flags().Float64Var(&mergeTolerance, "merge-tolerance", 0, "Apex spacing in seconds treated as a duplicate")
	c.Flags().IntVar(&noiseWindow, "noise-window", 16, "Scans per window for noise estimation")
	c.Flags().Float64Var(&noiseTolerance, "noise-tolerance", 4, "Noise threshold multiplier")
	c.Flags().Float64Var(&rtMin, "rt-min", 0, "Drop peaks eluting before this time (0 = no limit)")
	c.Flags().Float64Var(&rtMax, "rt-max", 0, "Drop peaks eluting after this time (0 = no limit)")
	c.Flags().Float64Var(&cutoffPercent, "cutoff", 0, "Ion intensity cutoff as % of base ion (0 = no cutoff)")
	c.Flags().IntVar(&topNIons, "top-n-ions", 0, "Keep only top N most intense ions per spectrum (0 = no limit)")
}

// detectFormat resolves the interchange format from a file extension.
func detectFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("cannot detect format from extension '%s', expected .csv or .json", ext)
	}
}

// runIDForFile derives a run identifier from a file name.
func runIDForFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileExists reports whether a path can be statted.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
