package core

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Peak is a single deconvolved chromatographic peak: an apex retention time,
// the sparse mass spectrum reconstructed at the apex, and the summed
// intensity (area) of that spectrum. Peaks are never mutated after creation.
type Peak struct {
	RT       float64      // apex retention time, seconds
	Spectrum MassSpectrum // surviving ions only, sorted by mass
	Area     float64      // summed intensity of the surviving ions
	RunID    string       // source run
	ApexScan int          // scan index of the apex in the source matrix
}

// UID returns a readable identifier for the peak built from its two most
// intense ions and the retention time, e.g. "73-147-332.12".
func (p *Peak) UID() string {
	top := p.TopIons(2)
	switch len(top) {
	case 0:
		return fmt.Sprintf("%.2f", p.RT)
	case 1:
		return fmt.Sprintf("%.0f-%.2f", top[0].Mass, p.RT)
	default:
		return fmt.Sprintf("%.0f-%.0f-%.2f", top[0].Mass, top[1].Mass, p.RT)
	}
}

// TopIons returns up to n ions ordered by descending intensity, breaking
// intensity ties toward the heavier mass.
func (p *Peak) TopIons(n int) []Ion {
	ions := append([]Ion(nil), p.Spectrum...)
	sort.Slice(ions, func(i, j int) bool {
		if ions[i].Intensity == ions[j].Intensity {
			return ions[i].Mass > ions[j].Mass
		}
		return ions[i].Intensity > ions[j].Intensity
	})
	if len(ions) > n {
		ions = ions[:n]
	}
	return ions
}

// PeakList is the ordered sequence of peaks detected in one run, sorted by
// apex retention time.
type PeakList []*Peak

// IsSorted checks if peaks are ordered by ascending retention time.
func (pl PeakList) IsSorted() bool {
	for i := 1; i < len(pl); i++ {
		if pl[i].RT < pl[i-1].RT {
			return false
		}
	}
	return true
}

// Sort orders peaks by ascending retention time. Equal times keep their
// original relative order.
func (pl PeakList) Sort() {
	sort.SliceStable(pl, func(i, j int) bool {
		return pl[i].RT < pl[j].RT
	})
}

// CompositePeak builds a single representative peak from a group of aligned
// peaks: the mean retention time and the mass-wise mean spectrum of the
// members. Returns nil for an empty group.
func CompositePeak(peaks []*Peak) *Peak {
	if len(peaks) == 0 {
		return nil
	}
	rts := make([]float64, len(peaks))
	spectra := make([]MassSpectrum, len(peaks))
	for i, p := range peaks {
		rts[i] = p.RT
		spectra[i] = p.Spectrum
	}
	spec := MeanSpectrum(spectra)
	return &Peak{
		RT:       stat.Mean(rts, nil),
		Spectrum: spec,
		Area:     spec.TotalIntensity(),
	}
}
