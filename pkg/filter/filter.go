// Package filter provides peak-list post-filters applied between detection
// and alignment.
package filter

import (
	"sort"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Config holds filtering configuration.
type Config struct {
	RTMin           float64 // drop peaks eluting before this time (0 = no limit)
	RTMax           float64 // drop peaks eluting after this time (0 = no limit)
	IntensityCutoff float64 // keep only ions above this % of the base ion (0 = no cutoff)
	TopNIons        int     // keep only the N most intense ions per spectrum (0 = no limit)
}

// Apply applies all configured filters and returns a new peak list; peaks
// are immutable, so filtered spectra become new peaks.
func (c *Config) Apply(pl core.PeakList) core.PeakList {
	out := make(core.PeakList, 0, len(pl))
	for _, p := range pl {
		if c.RTMin > 0 && p.RT < c.RTMin {
			continue
		}
		if c.RTMax > 0 && p.RT > c.RTMax {
			continue
		}

		spec := p.Spectrum
		if c.IntensityCutoff > 0 {
			spec = cutoffIons(spec, c.IntensityCutoff)
		}
		if c.TopNIons > 0 {
			spec = topNIons(spec, c.TopNIons)
		}
		if len(spec) == 0 {
			continue
		}

		if len(spec) == len(p.Spectrum) {
			out = append(out, p)
			continue
		}
		out = append(out, &core.Peak{
			RT:       p.RT,
			Spectrum: spec,
			Area:     spec.TotalIntensity(),
			RunID:    p.RunID,
			ApexScan: p.ApexScan,
		})
	}
	return out
}

// cutoffIons removes ions below the cutoff percentage of the base ion.
func cutoffIons(spec core.MassSpectrum, cutoff float64) core.MassSpectrum {
	base, ok := spec.BaseIon()
	if !ok {
		return spec
	}
	threshold := (cutoff / 100.0) * base.Intensity

	var filtered core.MassSpectrum
	for _, ion := range spec {
		if ion.Intensity >= threshold {
			filtered = append(filtered, ion)
		}
	}
	return filtered
}

// topNIons keeps only the N most intense ions, then restores mass order.
func topNIons(spec core.MassSpectrum, n int) core.MassSpectrum {
	if len(spec) <= n {
		return spec
	}

	ions := append(core.MassSpectrum(nil), spec...)
	sort.Slice(ions, func(i, j int) bool {
		if ions[i].Intensity == ions[j].Intensity {
			return ions[i].Mass > ions[j].Mass
		}
		return ions[i].Intensity > ions[j].Intensity
	})

	kept := ions[:n]
	kept.Sort()
	return kept
}

// RemoveEmptyPeaks removes peaks whose spectra have no ions left.
func RemoveEmptyPeaks(pl core.PeakList) core.PeakList {
	var filtered core.PeakList
	for _, p := range pl {
		if len(p.Spectrum) > 0 {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
