// Package jsonmatrix reads decoded intensity matrices from the JSON
// interchange format produced by external decoders.
package jsonmatrix

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// document mirrors the interchange schema.
type document struct {
	RunID       string      `json:"run_id"`
	Times       []float64   `json:"times"`
	Masses      []float64   `json:"masses"`
	Intensities [][]float64 `json:"intensities"`
}

// Read parses one intensity matrix from r. runID overrides the document's
// run_id when non-empty.
func Read(r io.Reader, runID string) (*core.IntensityMatrix, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("jsonmatrix: failed to decode: %w", err)
	}

	id := doc.RunID
	if runID != "" {
		id = runID
	}

	mat, err := core.NewIntensityMatrix(id, doc.Times, doc.Masses, doc.Intensities)
	if err != nil {
		return nil, fmt.Errorf("jsonmatrix: %w", err)
	}
	return mat, nil
}
