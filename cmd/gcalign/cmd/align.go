package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/gcalign/pkg/align"
	"github.com/ChrisMcGann/gcalign/pkg/core"
	"github.com/ChrisMcGann/gcalign/pkg/deconv"
	"github.com/ChrisMcGann/gcalign/pkg/filter"
	"github.com/ChrisMcGann/gcalign/pkg/noise"
	csvwriter "github.com/ChrisMcGann/gcalign/pkg/writer/csv"
	"github.com/ChrisMcGann/gcalign/pkg/writer/sqlite"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Detect and align peaks across multiple runs",
	Long: `Align deconvolves each input run into a peak list and progressively
aligns all runs into one consensus peak table.

Examples:
  # Align three runs and export the retention-time matrix
  gcalign align --in run1.csv --in run2.csv --in run3.csv --out-rt rt.csv

  # Align with a wider retention-time tolerance and SQLite output
  gcalign align --in a.csv --in b.csv --rt-tolerance 5 --db aligned.db`,
	RunE: runAlign,
}

func runAlign(cmd *cobra.Command, args []string) error {
	if len(inputFiles) < 2 {
		return fmt.Errorf("at least 2 input files are required, got %d", len(inputFiles))
	}
	for _, path := range inputFiles {
		if !fileExists(path) {
			return fmt.Errorf("input file does not exist: %s", path)
		}
	}

	alignCfg := align.Config{
		RTTolerance:    rtTolerance,
		Gap:            gapPenalty,
		MinSimilarity:  minSimilarity,
		SpectrumWeight: spectrumWeight,
		SqrtTransform:  sqrtTransform,
		Workers:        workers,
	}
	if err := alignCfg.Validate(); err != nil {
		return err
	}

	matrices := make([]*core.IntensityMatrix, 0, len(inputFiles))
	for _, path := range inputFiles {
		mat, err := readMatrix(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		matrices = append(matrices, mat)
	}

	noiseCfg := &noise.Config{WindowSize: noiseWindow, Tolerance: noiseTolerance}
	deconvCfg := &deconv.Config{
		PointsPerSide:   pointsPerSide,
		MinChannels:     minChannels,
		MinIntensity:    minIntensity,
		MergeDuplicates: mergeDuplicates,
		MergeTolerance:  mergeTolerance,
	}
	lists, err := deconvCfg.DetectAll(context.Background(), matrices, noiseCfg, workers)
	if err != nil {
		return err
	}

	filterCfg := &filter.Config{
		RTMin:           rtMin,
		RTMax:           rtMax,
		IntensityCutoff: cutoffPercent,
		TopNIons:        topNIons,
	}

	runs := make([]*align.Alignment, len(lists))
	for i, peaks := range lists {
		peaks = filterCfg.Apply(peaks)
		fmt.Printf("Run %s: %d peaks\n", matrices[i].RunID(), len(peaks))
		runs[i] = align.NewAlignment(matrices[i].RunID(), peaks)
	}

	fmt.Printf("Aligning %d runs (rt-tolerance=%.2fs, gap=%.2f)...\n",
		len(runs), alignCfg.RTTolerance, alignCfg.Gap)
	result, err := align.Multiple(context.Background(), alignCfg, runs)
	if err != nil {
		return err
	}
	if minRowPeaks > 0 {
		result = result.FilterMinPeaks(minRowPeaks)
	}
	table := result.Table()
	fmt.Printf("Aligned table: %d rows x %d runs\n", table.Len(), len(table.RunIDs()))

	if rtOutFile != "" {
		if err := writeCSV(rtOutFile, table, csvwriter.WriteRetentionTimes); err != nil {
			return err
		}
		fmt.Printf("Wrote retention times: %s\n", rtOutFile)
	}
	if areaOutFile != "" {
		if err := writeCSV(areaOutFile, table, csvwriter.WriteAreas); err != nil {
			return err
		}
		fmt.Printf("Wrote areas: %s\n", areaOutFile)
	}
	if dbOutFile != "" {
		if err := writeDB(dbOutFile, table, alignCfg); err != nil {
			return err
		}
		fmt.Printf("Wrote database: %s\n", dbOutFile)
	}

	return nil
}

func writeCSV(path string, table *align.Table, write func(w io.Writer, t *align.Table) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeDB(path string, table *align.Table, cfg align.Config) error {
	writer, err := sqlite.NewWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	if err := writer.WriteTable(table, cfg); err != nil {
		writer.Close()
		return err
	}
	return writer.Finalize()
}
