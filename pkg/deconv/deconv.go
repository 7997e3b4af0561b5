// Package deconv implements Biller-Biemann style deconvolution of GC-MS
// intensity matrices: per-channel apex candidates are promoted to composite
// peaks when enough distinct channels maximise at the same or an adjacent
// scan, and each promoted apex gets a sparse mass spectrum built from the
// channels that exceed the run's noise thresholds.
package deconv

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Config holds deconvolution parameters.
type Config struct {
	PointsPerSide   int     // half-width of the local-maximum window, in scans
	MinChannels     int     // channels that must maximise at or adjacent to a scan
	MinIntensity    float64 // minimum summed spectrum intensity for a peak to survive
	MergeDuplicates bool    // fold peaks with sub-resolution apex spacing into one
	MergeTolerance  float64 // apex spacing, in seconds, treated as a duplicate
}

// Validate rejects out-of-range parameters.
func (c *Config) Validate() error {
	if c.PointsPerSide < 1 {
		return fmt.Errorf("deconv: points per side must be at least 1, got %d", c.PointsPerSide)
	}
	if c.MinChannels < 1 {
		return fmt.Errorf("deconv: min channels must be at least 1, got %d", c.MinChannels)
	}
	if c.MinIntensity < 0 {
		return fmt.Errorf("deconv: min intensity must be non-negative, got %g", c.MinIntensity)
	}
	if c.MergeTolerance < 0 {
		return fmt.Errorf("deconv: merge tolerance must be non-negative, got %g", c.MergeTolerance)
	}
	return nil
}

// Detect turns a multi-channel intensity matrix into a peak list ordered by
// apex retention time. thresholds carries one rejection threshold per mass
// channel (typically from noise.Config.Thresholds); nil means no threshold.
// An empty peak list is a valid result, not an error.
func (c *Config) Detect(m *core.IntensityMatrix, thresholds []float64) (core.PeakList, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if thresholds != nil && len(thresholds) != m.NumChannels() {
		return nil, fmt.Errorf("deconv: got %d thresholds for %d channels", len(thresholds), m.NumChannels())
	}

	counts := c.channelApexCounts(m)
	apexes := c.promoteApexes(counts)

	peaks := make(core.PeakList, 0, len(apexes))
	for _, scan := range apexes {
		spec := apexSpectrum(m, scan, thresholds)
		if len(spec) == 0 {
			continue
		}
		area := spec.TotalIntensity()
		if area < c.MinIntensity {
			continue
		}
		peaks = append(peaks, &core.Peak{
			RT:       m.Time(scan),
			Spectrum: spec,
			Area:     area,
			RunID:    m.RunID(),
			ApexScan: scan,
		})
	}

	if c.MergeDuplicates {
		peaks = c.mergeNearApexes(peaks)
	}
	return peaks, nil
}

// channelApexCounts counts, per scan, how many channels have a local-maximum
// apex candidate at that scan. A scan is a candidate for a channel iff its
// intensity is positive and maximal over the window of PointsPerSide scans
// on both sides; plateaus yield only their first scan.
func (c *Config) channelApexCounts(m *core.IntensityMatrix) []int {
	nScans := m.NumScans()
	counts := make([]int, nScans)

	for j := 0; j < m.NumChannels(); j++ {
		for i := 0; i < nScans; i++ {
			v := m.Intensity(i, j)
			if v <= 0 {
				continue
			}
			lo := i - c.PointsPerSide
			if lo < 0 {
				lo = 0
			}
			hi := i + c.PointsPerSide
			if hi >= nScans {
				hi = nScans - 1
			}
			isApex := true
			for k := lo; k <= hi; k++ {
				if k == i {
					continue
				}
				w := m.Intensity(k, j)
				if w > v || (w == v && k < i) {
					isApex = false
					break
				}
			}
			if isApex {
				counts[i]++
			}
		}
	}
	return counts
}

// promoteApexes selects the scans that become composite peak apexes: a scan
// needs at least MinChannels candidates counting its own and the two
// adjacent scans, and adjacent promoted scans are suppressed in favour of
// the better-supported one (ties go to the earlier scan). The result is in
// ascending scan order.
func (c *Config) promoteApexes(counts []int) []int {
	n := len(counts)
	related := make([]int, n)
	for i := range counts {
		related[i] = counts[i]
		if i > 0 {
			related[i] += counts[i-1]
		}
		if i < n-1 {
			related[i] += counts[i+1]
		}
	}

	var candidates []int
	for i, cnt := range counts {
		if cnt > 0 && related[i] >= c.MinChannels {
			candidates = append(candidates, i)
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		if related[candidates[a]] == related[candidates[b]] {
			return candidates[a] < candidates[b]
		}
		return related[candidates[a]] > related[candidates[b]]
	})

	taken := make(map[int]bool, len(candidates))
	var apexes []int
	for _, i := range candidates {
		if taken[i-1] || taken[i] || taken[i+1] {
			continue
		}
		taken[i] = true
		apexes = append(apexes, i)
	}
	sort.Ints(apexes)
	return apexes
}

// apexSpectrum builds the sparse spectrum at a promoted apex scan: every
// channel whose intensity exceeds its threshold contributes an ion; the
// rest are omitted, not zeroed.
func apexSpectrum(m *core.IntensityMatrix, scan int, thresholds []float64) core.MassSpectrum {
	spec := make(core.MassSpectrum, 0, m.NumChannels())
	for j := 0; j < m.NumChannels(); j++ {
		v := m.Intensity(scan, j)
		if v <= 0 {
			continue
		}
		if thresholds != nil && v <= thresholds[j] {
			continue
		}
		spec = append(spec, core.Ion{Mass: m.Mass(j), Intensity: v})
	}
	return spec
}

// mergeNearApexes folds runs of peaks whose apex times sit within
// MergeTolerance of each other into single peaks by spectral addition. The
// merged peak keeps the apex of its most intense member (earlier member on
// an exact tie).
func (c *Config) mergeNearApexes(peaks core.PeakList) core.PeakList {
	if len(peaks) < 2 {
		return peaks
	}
	merged := make(core.PeakList, 0, len(peaks))
	cur := peaks[0]
	for _, next := range peaks[1:] {
		if next.RT-cur.RT <= c.MergeTolerance {
			spec := cur.Spectrum.Add(next.Spectrum)
			keep := cur
			if next.Area > cur.Area {
				keep = next
			}
			cur = &core.Peak{
				RT:       keep.RT,
				Spectrum: spec,
				Area:     spec.TotalIntensity(),
				RunID:    keep.RunID,
				ApexScan: keep.ApexScan,
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	return merged
}
