// Package align implements pairwise and progressive multiple alignment of
// GC-MS peak lists by dynamic programming, matching peaks across runs on a
// blend of retention-time proximity and mass-spectral similarity.
package align

import (
	"errors"
	"fmt"
)

// ErrTooFewRuns is returned by Multiple when fewer than two runs are given.
var ErrTooFewRuns = errors.New("align: at least two runs are required")

// ErrDuplicateRun is returned when two input runs share an identifier.
var ErrDuplicateRun = errors.New("align: duplicate run id")

// Config holds alignment parameters.
type Config struct {
	RTTolerance    float64 // seconds; peaks further apart are never matched
	Gap            float64 // penalty charged for leaving a peak unmatched
	MinSimilarity  float64 // matches scoring below this are treated as double gaps
	SpectrumWeight float64 // weight of the spectral term in [0,1]; the rest goes to the RT term
	SqrtTransform  bool    // square-root scale intensities before comparing spectra
	Workers        int     // concurrency for similarity rows and candidate merges; <1 means 1
}

// Validate rejects out-of-range parameters.
func (c *Config) Validate() error {
	if c.RTTolerance <= 0 {
		return fmt.Errorf("align: rt tolerance must be positive, got %g", c.RTTolerance)
	}
	if c.Gap <= 0 {
		return fmt.Errorf("align: gap penalty must be positive, got %g", c.Gap)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("align: min similarity must be in [0,1], got %g", c.MinSimilarity)
	}
	if c.SpectrumWeight < 0 || c.SpectrumWeight > 1 {
		return fmt.Errorf("align: spectrum weight must be in [0,1], got %g", c.SpectrumWeight)
	}
	return nil
}

func (c *Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}
