// Package csv exports aligned peak tables as CSV matrices: one file of
// aligned retention times and one of aligned peak areas, a row per
// consensus peak group and a column per run, with NA marking gaps.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ChrisMcGann/gcalign/pkg/align"
)

// WriteRetentionTimes writes the aligned retention-time matrix.
func WriteRetentionTimes(w io.Writer, t *align.Table) error {
	return write(w, t, func(i, j int) string {
		p := t.Peak(i, j)
		if p == nil {
			return "NA"
		}
		return fmt.Sprintf("%.3f", p.RT)
	})
}

// WriteAreas writes the aligned peak-area matrix.
func WriteAreas(w io.Writer, t *align.Table) error {
	return write(w, t, func(i, j int) string {
		p := t.Peak(i, j)
		if p == nil {
			return "NA"
		}
		return fmt.Sprintf("%.4f", p.Area)
	})
}

func write(w io.Writer, t *align.Table, cell func(i, j int) string) error {
	cw := csv.NewWriter(w)

	runIDs := t.RunIDs()
	header := append([]string{"UID", "RTavg"}, runIDs...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: failed to write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		uid := ""
		if compo := t.CompositePeak(i); compo != nil {
			uid = compo.UID()
		}
		record := make([]string, 0, len(runIDs)+2)
		record = append(record, uid, fmt.Sprintf("%.3f", t.MeanRT(i)))
		for j := range runIDs {
			record = append(record, cell(i, j))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}
