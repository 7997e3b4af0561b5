package core

import (
	"fmt"
	"math"
	"strings"
)

// IntensityMatrix is an immutable per-run grid of retention-time x
// mass-channel intensities, as produced by an external decoder. Scan times
// are strictly increasing seconds; mass channels are ascending m/z values
// (possibly non-integer binned values).
type IntensityMatrix struct {
	runID  string
	times  []float64
	masses []float64
	grid   [][]float64 // [scan][channel]
}

// NewIntensityMatrix validates the decoded data and builds a matrix. The
// input slices are copied; callers cannot mutate the matrix afterwards.
func NewIntensityMatrix(runID string, times, masses []float64, grid [][]float64) (*IntensityMatrix, error) {
	var errs []string

	if runID == "" {
		errs = append(errs, "run id is required")
	}
	if len(times) == 0 {
		errs = append(errs, "at least one scan is required")
	}
	if len(masses) == 0 {
		errs = append(errs, "at least one mass channel is required")
	}
	if len(grid) != len(times) {
		errs = append(errs, fmt.Sprintf("grid has %d rows, expected %d", len(grid), len(times)))
	}

	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			errs = append(errs, fmt.Sprintf("scan times must be strictly increasing (scan %d)", i))
			break
		}
	}
	for j := 1; j < len(masses); j++ {
		if masses[j] <= masses[j-1] {
			errs = append(errs, fmt.Sprintf("mass channels must be strictly increasing (channel %d)", j))
			break
		}
	}

	for i, row := range grid {
		if len(row) != len(masses) {
			errs = append(errs, fmt.Sprintf("scan %d has %d channels, expected %d", i, len(row), len(masses)))
			continue
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				errs = append(errs, fmt.Sprintf("invalid intensity at scan %d channel %d", i, j))
			}
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{
			Field:   "IntensityMatrix",
			Message: strings.Join(errs, "; "),
		}
	}

	m := &IntensityMatrix{
		runID:  runID,
		times:  append([]float64(nil), times...),
		masses: append([]float64(nil), masses...),
		grid:   make([][]float64, len(grid)),
	}
	for i, row := range grid {
		m.grid[i] = append([]float64(nil), row...)
	}
	return m, nil
}

// RunID returns the identifier of the run this matrix belongs to.
func (m *IntensityMatrix) RunID() string { return m.runID }

// NumScans returns the number of scans (rows).
func (m *IntensityMatrix) NumScans() int { return len(m.times) }

// NumChannels returns the number of mass channels (columns).
func (m *IntensityMatrix) NumChannels() int { return len(m.masses) }

// Time returns the retention time of scan i in seconds.
func (m *IntensityMatrix) Time(i int) float64 { return m.times[i] }

// Mass returns the m/z value of channel j.
func (m *IntensityMatrix) Mass(j int) float64 { return m.masses[j] }

// Intensity returns the recorded intensity at scan i, channel j.
func (m *IntensityMatrix) Intensity(i, j int) float64 { return m.grid[i][j] }

// Times returns a copy of the scan time sequence.
func (m *IntensityMatrix) Times() []float64 {
	return append([]float64(nil), m.times...)
}

// Masses returns a copy of the mass channel sequence.
func (m *IntensityMatrix) Masses() []float64 {
	return append([]float64(nil), m.masses...)
}

// IonChromatogram extracts the trace of channel j as a read-only view.
func (m *IntensityMatrix) IonChromatogram(j int) (*IonChromatogram, error) {
	if j < 0 || j >= len(m.masses) {
		return nil, fmt.Errorf("channel index %d out of range [0,%d)", j, len(m.masses))
	}
	ic := &IonChromatogram{
		Mass:        m.masses[j],
		Times:       m.times,
		Intensities: make([]float64, len(m.times)),
	}
	for i := range m.grid {
		ic.Intensities[i] = m.grid[i][j]
	}
	return ic, nil
}

// ChannelForMass returns the index of the channel nearest to mass. The lower
// channel wins when mass falls exactly halfway between two channels.
func (m *IntensityMatrix) ChannelForMass(mass float64) int {
	best := 0
	for j := 1; j < len(m.masses); j++ {
		if math.Abs(m.masses[j]-mass) < math.Abs(m.masses[best]-mass) {
			best = j
		}
	}
	return best
}

// IonChromatogram is a single mass channel's intensity over time, derived
// from an IntensityMatrix. Times is shared with the parent matrix and must
// not be modified.
type IonChromatogram struct {
	Mass        float64
	Times       []float64
	Intensities []float64
}

// Len returns the number of scans in the chromatogram.
func (ic *IonChromatogram) Len() int { return len(ic.Intensities) }
