package align

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Row is one aligned position: one entry per participating run, in the
// alignment's run order. A nil entry is a gap (no corresponding peak in that
// run).
type Row struct {
	peaks []*core.Peak
}

// Peaks returns a copy of the row's entries.
func (r Row) Peaks() []*core.Peak {
	return append([]*core.Peak(nil), r.peaks...)
}

// Members returns the row's non-gap peaks.
func (r Row) Members() []*core.Peak {
	var out []*core.Peak
	for _, p := range r.peaks {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Alignment models an alignment of peak lists: a column per run and a row
// per aligned position. A single run is itself a trivial alignment with one
// row per peak, which lets the multiple aligner treat original runs and
// already-merged groups uniformly.
//
// Within an alignment, row order is monotonic in retention time for every
// run: alignment never reorders peaks within a run.
type Alignment struct {
	runIDs []string
	rows   []Row
	score  float64
}

// NewAlignment builds the trivial one-row-per-peak alignment for a single
// run. The peak list is copied and ordered by retention time.
func NewAlignment(runID string, peaks core.PeakList) *Alignment {
	sorted := append(core.PeakList(nil), peaks...)
	sorted.Sort()

	rows := make([]Row, len(sorted))
	for i, p := range sorted {
		rows[i] = Row{peaks: []*core.Peak{p}}
	}
	return &Alignment{
		runIDs: []string{runID},
		rows:   rows,
	}
}

// RunIDs returns the participating run identifiers in declared order.
func (a *Alignment) RunIDs() []string {
	return append([]string(nil), a.runIDs...)
}

// Len returns the number of aligned rows.
func (a *Alignment) Len() int { return len(a.rows) }

// NumRuns returns the number of participating runs.
func (a *Alignment) NumRuns() int { return len(a.runIDs) }

// Row returns aligned position i.
func (a *Alignment) Row(i int) Row { return a.rows[i] }

// Score returns the normalised similarity of the pairwise alignment that
// produced this alignment; zero for a trivial single-run alignment.
func (a *Alignment) Score() float64 { return a.score }

// FilterMinPeaks returns a copy of the alignment keeping only rows with at
// least min real peaks.
func (a *Alignment) FilterMinPeaks(min int) *Alignment {
	var rows []Row
	for _, row := range a.rows {
		if len(row.Members()) >= min {
			rows = append(rows, row)
		}
	}
	return &Alignment{runIDs: a.runIDs, rows: rows, score: a.score}
}

// AlignedPeaks returns one composite peak per row, each carrying the
// combined spectrum and mean retention time of the row's members.
func (a *Alignment) AlignedPeaks() []*core.Peak {
	out := make([]*core.Peak, len(a.rows))
	for i, row := range a.rows {
		out[i] = core.CompositePeak(row.Members())
	}
	return out
}

// rowRep is the "virtual peak" standing in for one aligned row during
// further alignment: the mean apex time and mass-wise mean spectrum of the
// row's members.
type rowRep struct {
	rt   float64
	spec core.MassSpectrum
}

// representatives computes the virtual peak for every row.
func (a *Alignment) representatives() []rowRep {
	reps := make([]rowRep, len(a.rows))
	for i, row := range a.rows {
		members := row.Members()
		rts := make([]float64, len(members))
		spectra := make([]core.MassSpectrum, len(members))
		for k, p := range members {
			rts[k] = p.RT
			spectra[k] = p.Spectrum
		}
		reps[i] = rowRep{
			rt:   stat.Mean(rts, nil),
			spec: core.MeanSpectrum(spectra),
		}
	}
	return reps
}

// reorder returns a copy of the alignment with its run columns permuted to
// the given run id order. Every id in order must be a run of the alignment.
func (a *Alignment) reorder(order []string) *Alignment {
	index := make(map[string]int, len(a.runIDs))
	for i, id := range a.runIDs {
		index[id] = i
	}
	perm := make([]int, len(order))
	for i, id := range order {
		perm[i] = index[id]
	}

	rows := make([]Row, len(a.rows))
	for i, row := range a.rows {
		peaks := make([]*core.Peak, len(perm))
		for k, src := range perm {
			peaks[k] = row.peaks[src]
		}
		rows[i] = Row{peaks: peaks}
	}
	return &Alignment{
		runIDs: append([]string(nil), order...),
		rows:   rows,
		score:  a.score,
	}
}
