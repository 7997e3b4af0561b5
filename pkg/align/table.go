package align

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Table is the finalized aligned peak table: one row per consensus peak
// group, one column per run, rows ordered by the mean retention time of each
// row's matched peaks. Read-only once built.
type Table struct {
	runIDs  []string
	rows    []Row
	meanRTs []float64
}

// Table finalizes the alignment into an aligned peak table. Ties on mean
// retention time are broken by the earliest run holding a peak, then by
// that peak's apex, so the order is reproducible.
func (a *Alignment) Table() *Table {
	t := &Table{
		runIDs:  a.RunIDs(),
		rows:    append([]Row(nil), a.rows...),
		meanRTs: make([]float64, len(a.rows)),
	}
	for i, row := range t.rows {
		members := row.Members()
		rts := make([]float64, len(members))
		for k, p := range members {
			rts[k] = p.RT
		}
		t.meanRTs[i] = stat.Mean(rts, nil)
	}

	order := make([]int, len(t.rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		rx, ry := order[x], order[y]
		if t.meanRTs[rx] != t.meanRTs[ry] {
			return t.meanRTs[rx] < t.meanRTs[ry]
		}
		fx, px := firstMember(t.rows[rx])
		fy, py := firstMember(t.rows[ry])
		if fx != fy {
			return fx < fy
		}
		if px.RT != py.RT {
			return px.RT < py.RT
		}
		return px.ApexScan < py.ApexScan
	})

	rows := make([]Row, len(order))
	meanRTs := make([]float64, len(order))
	for i, src := range order {
		rows[i] = t.rows[src]
		meanRTs[i] = t.meanRTs[src]
	}
	t.rows = rows
	t.meanRTs = meanRTs
	return t
}

// firstMember returns the index of the earliest-declared run with a peak in
// the row, and that peak.
func firstMember(row Row) (int, *core.Peak) {
	for i, p := range row.peaks {
		if p != nil {
			return i, p
		}
	}
	return len(row.peaks), &core.Peak{}
}

// RunIDs returns the table's run identifiers in declared order.
func (t *Table) RunIDs() []string {
	return append([]string(nil), t.runIDs...)
}

// Len returns the number of consensus rows.
func (t *Table) Len() int { return len(t.rows) }

// MeanRT returns the mean retention time of row i's matched peaks.
func (t *Table) MeanRT(i int) float64 { return t.meanRTs[i] }

// Peak returns the peak of run j in row i, or nil for a gap.
func (t *Table) Peak(i, j int) *core.Peak { return t.rows[i].peaks[j] }

// Row returns row i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// CompositePeak returns the representative peak for row i.
func (t *Table) CompositePeak(i int) *core.Peak {
	return core.CompositePeak(t.rows[i].Members())
}

// CommonIon picks, for every row, the ion mass that appears most often among
// the members' five most intense ions; the heaviest mass wins a frequency
// tie. Useful as a quantification ion shared across runs. Rows with no
// members yield zero.
func (t *Table) CommonIon() []float64 {
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		freq := make(map[float64]int)
		for _, p := range row.Members() {
			for _, ion := range p.TopIons(5) {
				freq[ion.Mass]++
			}
		}

		masses := make([]float64, 0, len(freq))
		for mass := range freq {
			masses = append(masses, mass)
		}
		sort.Float64s(masses)

		var best float64
		bestCount := 0
		for _, mass := range masses {
			if freq[mass] > bestCount || (freq[mass] == bestCount && mass > best) {
				best = mass
				bestCount = freq[mass]
			}
		}
		out[i] = best
	}
	return out
}
