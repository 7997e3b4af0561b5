// Package noise estimates baseline noise levels for ion chromatograms.
//
// Chromatographic baseline noise is not stationary over a run, so the level
// is computed from windowed median absolute deviations rather than a single
// global statistic: each window contributes a robust local estimate and the
// median of those estimates is the trace's noise level.
package noise

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Consistency constant relating MAD to the standard deviation of a normal
// distribution.
const madScale = 1.4826

// Config holds noise estimation parameters.
type Config struct {
	WindowSize int     // number of scans per window
	Tolerance  float64 // multiplier applied to the noise level to form a threshold
}

// Validate rejects out-of-range parameters.
func (c *Config) Validate() error {
	if c.WindowSize < 2 {
		return fmt.Errorf("noise: window size must be at least 2, got %d", c.WindowSize)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("noise: tolerance must be positive, got %g", c.Tolerance)
	}
	return nil
}

// Estimate computes the noise level of a single ion chromatogram as the
// median of per-window scaled MADs. Pure function of its input.
func (c *Config) Estimate(ic *core.IonChromatogram) float64 {
	n := ic.Len()
	if n == 0 {
		return 0
	}

	var mads []float64
	for start := 0; start < n; start += c.WindowSize {
		end := start + c.WindowSize
		if end > n {
			end = n
		}
		if end-start < 2 {
			break
		}
		mads = append(mads, windowMAD(ic.Intensities[start:end]))
	}
	if len(mads) == 0 {
		return windowMAD(ic.Intensities)
	}
	return median(mads)
}

// Threshold returns the rejection threshold for a trace: noise level scaled
// by the configured tolerance factor.
func (c *Config) Threshold(ic *core.IonChromatogram) float64 {
	return c.Estimate(ic) * c.Tolerance
}

// Thresholds computes a per-channel rejection threshold for every mass
// channel of a matrix.
func (c *Config) Thresholds(m *core.IntensityMatrix) []float64 {
	out := make([]float64, m.NumChannels())
	for j := range out {
		ic, err := m.IonChromatogram(j)
		if err != nil {
			// j is always in range here
			continue
		}
		out[j] = c.Threshold(ic)
	}
	return out
}

// windowMAD returns the scaled median absolute deviation of one window.
func windowMAD(window []float64) float64 {
	med := median(window)
	devs := make([]float64, len(window))
	for i, v := range window {
		d := v - med
		if d < 0 {
			d = -d
		}
		devs[i] = d
	}
	return median(devs) * madScale
}

// median computes the empirical median without modifying its input.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
