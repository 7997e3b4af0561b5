package core

import (
	"testing"
)

func TestNewIntensityMatrixValidation(t *testing.T) {
	times := []float64{1, 2, 3}
	masses := []float64{50, 51}
	grid := [][]float64{{0, 1}, {2, 3}, {4, 5}}

	tests := []struct {
		name    string
		runID   string
		times   []float64
		masses  []float64
		grid    [][]float64
		wantErr bool
	}{
		{
			name:   "valid matrix",
			runID:  "run1",
			times:  times,
			masses: masses,
			grid:   grid,
		},
		{
			name:    "missing run id",
			runID:   "",
			times:   times,
			masses:  masses,
			grid:    grid,
			wantErr: true,
		},
		{
			name:    "empty scans",
			runID:   "run1",
			times:   nil,
			masses:  masses,
			grid:    nil,
			wantErr: true,
		},
		{
			name:    "empty channels",
			runID:   "run1",
			times:   times,
			masses:  nil,
			grid:    [][]float64{{}, {}, {}},
			wantErr: true,
		},
		{
			name:    "non-increasing scan times",
			runID:   "run1",
			times:   []float64{1, 2, 2},
			masses:  masses,
			grid:    grid,
			wantErr: true,
		},
		{
			name:    "non-increasing mass channels",
			runID:   "run1",
			times:   times,
			masses:  []float64{51, 50},
			grid:    grid,
			wantErr: true,
		},
		{
			name:    "row count mismatch",
			runID:   "run1",
			times:   times,
			masses:  masses,
			grid:    [][]float64{{0, 1}, {2, 3}},
			wantErr: true,
		},
		{
			name:    "column count mismatch",
			runID:   "run1",
			times:   times,
			masses:  masses,
			grid:    [][]float64{{0, 1}, {2}, {4, 5}},
			wantErr: true,
		},
		{
			name:    "negative intensity",
			runID:   "run1",
			times:   times,
			masses:  masses,
			grid:    [][]float64{{0, 1}, {2, -3}, {4, 5}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIntensityMatrix(tt.runID, tt.times, tt.masses, tt.grid)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewIntensityMatrix() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIntensityMatrixImmutable(t *testing.T) {
	times := []float64{1, 2}
	grid := [][]float64{{10, 20}, {30, 40}}
	m, err := NewIntensityMatrix("run1", times, []float64{50, 51}, grid)
	if err != nil {
		t.Fatalf("NewIntensityMatrix() error = %v", err)
	}

	// Mutating the inputs or returned copies must not affect the matrix.
	times[0] = 99
	grid[0][0] = 99
	m.Times()[1] = 99
	m.Masses()[0] = 99

	if got := m.Time(0); got != 1 {
		t.Errorf("Time(0) = %v, want 1", got)
	}
	if got := m.Intensity(0, 0); got != 10 {
		t.Errorf("Intensity(0,0) = %v, want 10", got)
	}
	if got := m.Mass(0); got != 50 {
		t.Errorf("Mass(0) = %v, want 50", got)
	}
}

func TestIonChromatogram(t *testing.T) {
	m, err := NewIntensityMatrix("run1",
		[]float64{1, 2, 3},
		[]float64{50, 60},
		[][]float64{{1, 10}, {2, 20}, {3, 30}})
	if err != nil {
		t.Fatalf("NewIntensityMatrix() error = %v", err)
	}

	ic, err := m.IonChromatogram(1)
	if err != nil {
		t.Fatalf("IonChromatogram(1) error = %v", err)
	}
	if ic.Mass != 60 {
		t.Errorf("Mass = %v, want 60", ic.Mass)
	}
	if ic.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ic.Len())
	}
	want := []float64{10, 20, 30}
	for i, v := range want {
		if ic.Intensities[i] != v {
			t.Errorf("Intensities[%d] = %v, want %v", i, ic.Intensities[i], v)
		}
	}

	if _, err := m.IonChromatogram(2); err == nil {
		t.Error("IonChromatogram(2) expected out of range error")
	}
}

func TestChannelForMass(t *testing.T) {
	m, err := NewIntensityMatrix("run1",
		[]float64{1},
		[]float64{50, 60, 70},
		[][]float64{{0, 0, 0}})
	if err != nil {
		t.Fatalf("NewIntensityMatrix() error = %v", err)
	}

	tests := []struct {
		mass float64
		want int
	}{
		{50, 0},
		{54.9, 0},
		{55, 0}, // halfway goes to the lower channel
		{55.1, 1},
		{72, 2},
	}
	for _, tt := range tests {
		if got := m.ChannelForMass(tt.mass); got != tt.want {
			t.Errorf("ChannelForMass(%v) = %d, want %d", tt.mass, got, tt.want)
		}
	}
}
