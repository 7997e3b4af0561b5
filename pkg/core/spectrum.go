// Package core provides the data model and validation logic for GC-MS
// chromatogram data used by GCAlign: intensity matrices, ion chromatograms,
// mass spectra and detected peaks.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Ion represents a single mass channel's contribution to a spectrum.
type Ion struct {
	Mass      float64
	Intensity float64
}

// MassSpectrum is a sparse mass spectrum: only ions that survived the noise
// threshold are retained, sorted by ascending mass. Channels below threshold
// are omitted entirely, not stored as zero.
type MassSpectrum []Ion

// ValidationError represents an error found during model validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum meets all requirements for processing.
func (s MassSpectrum) Validate() error {
	var errs []string

	for i, ion := range s {
		if math.IsNaN(ion.Mass) || math.IsInf(ion.Mass, 0) {
			errs = append(errs, fmt.Sprintf("ion %d has invalid mass", i))
		}
		if math.IsNaN(ion.Intensity) || math.IsInf(ion.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("ion %d has invalid intensity", i))
		}
		if ion.Mass <= 0 {
			errs = append(errs, fmt.Sprintf("ion %d mass must be positive", i))
		}
		if ion.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("ion %d intensity must be non-negative", i))
		}
	}

	if !s.IsSorted() {
		errs = append(errs, "ions must be sorted by mass")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "MassSpectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// IsSorted checks if ions are sorted by mass in ascending order.
func (s MassSpectrum) IsSorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Mass < s[i-1].Mass {
			return false
		}
	}
	return true
}

// Sort sorts ions by mass in ascending order.
func (s MassSpectrum) Sort() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Mass < s[j].Mass
	})
}

// TotalIntensity returns the summed intensity over all ions.
func (s MassSpectrum) TotalIntensity() float64 {
	total := 0.0
	for _, ion := range s {
		total += ion.Intensity
	}
	return total
}

// BaseIon returns the most intense ion. The heavier ion wins on an exact
// intensity tie so the choice is deterministic. Returns false for an empty
// spectrum.
func (s MassSpectrum) BaseIon() (Ion, bool) {
	if len(s) == 0 {
		return Ion{}, false
	}
	base := s[0]
	for _, ion := range s[1:] {
		if ion.Intensity > base.Intensity ||
			(ion.Intensity == base.Intensity && ion.Mass > base.Mass) {
			base = ion
		}
	}
	return base, true
}

// Intensity returns the intensity recorded for the given mass, or zero if the
// mass is not present in the spectrum.
func (s MassSpectrum) Intensity(mass float64) float64 {
	i := sort.Search(len(s), func(i int) bool { return s[i].Mass >= mass })
	if i < len(s) && s[i].Mass == mass {
		return s[i].Intensity
	}
	return 0
}

// Add folds another spectrum into this one, summing intensities on shared
// masses, and returns the combined spectrum. Neither input is modified.
func (s MassSpectrum) Add(other MassSpectrum) MassSpectrum {
	out := make(MassSpectrum, 0, len(s)+len(other))
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i].Mass < other[j].Mass:
			out = append(out, s[i])
			i++
		case s[i].Mass > other[j].Mass:
			out = append(out, other[j])
			j++
		default:
			out = append(out, Ion{Mass: s[i].Mass, Intensity: s[i].Intensity + other[j].Intensity})
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	out = append(out, other[j:]...)
	return out
}

// Scale returns a copy of the spectrum with every intensity multiplied by f.
func (s MassSpectrum) Scale(f float64) MassSpectrum {
	out := make(MassSpectrum, len(s))
	for i, ion := range s {
		out[i] = Ion{Mass: ion.Mass, Intensity: ion.Intensity * f}
	}
	return out
}

// MeanSpectrum computes the mass-wise mean of several spectra: intensities on
// shared masses are summed and the total divided by the number of spectra.
// Used to build the representative spectrum of an aligned peak group.
func MeanSpectrum(spectra []MassSpectrum) MassSpectrum {
	if len(spectra) == 0 {
		return nil
	}
	sum := spectra[0]
	for _, s := range spectra[1:] {
		sum = sum.Add(s)
	}
	return sum.Scale(1 / float64(len(spectra)))
}
