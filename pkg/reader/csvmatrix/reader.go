// Package csvmatrix reads decoded intensity matrices from the CSV
// interchange format: a header row of "rt" followed by the mass channel
// values, then one row per scan holding the retention time and the channel
// intensities. Vendor raw formats are decoded upstream; this package only
// consumes already-decoded numeric data.
package csvmatrix

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Read parses one intensity matrix from r. runID identifies the run the
// matrix belongs to.
func Read(r io.Reader, runID string) (*core.IntensityMatrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csvmatrix: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csvmatrix: failed to read header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "rt") {
		return nil, fmt.Errorf("csvmatrix: header must be 'rt' followed by mass channels")
	}

	masses := make([]float64, len(header)-1)
	for j, field := range header[1:] {
		mass, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("csvmatrix: invalid mass channel '%s': %w", field, err)
		}
		masses[j] = mass
	}

	var times []float64
	var grid [][]float64
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvmatrix: failed to read scan: %w", err)
		}
		line++
		if len(record) != len(header) {
			return nil, fmt.Errorf("csvmatrix: line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		rt, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("csvmatrix: line %d: invalid retention time: %w", line, err)
		}
		row := make([]float64, len(masses))
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("csvmatrix: line %d: invalid intensity: %w", line, err)
			}
			row[j] = v
		}
		times = append(times, rt)
		grid = append(grid, row)
	}

	mat, err := core.NewIntensityMatrix(runID, times, masses, grid)
	if err != nil {
		return nil, fmt.Errorf("csvmatrix: %w", err)
	}
	return mat, nil
}
