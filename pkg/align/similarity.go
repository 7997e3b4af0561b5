package align

import (
	"math"
	"sync"
)

// similarity scores two virtual peaks in [0,1]. A pair outside the
// retention-time tolerance scores zero regardless of how well the spectra
// agree; inside the tolerance the score is a weighted average of a linearly
// decaying time term and the spectral cosine.
func (c *Config) similarity(a, b rowRep) float64 {
	dt := math.Abs(a.rt - b.rt)
	if dt > c.RTTolerance {
		return 0
	}
	rtTerm := 1 - dt/c.RTTolerance
	cos := c.cosine(a, b)
	return (1-c.SpectrumWeight)*rtTerm + c.SpectrumWeight*cos
}

// cosine computes the normalised dot product of two sparse spectra by
// merge-walking their sorted ion lists, with the optional square-root
// intensity transform applied to down-weight dominant ions.
func (c *Config) cosine(a, b rowRep) float64 {
	transform := func(v float64) float64 { return v }
	if c.SqrtTransform {
		transform = math.Sqrt
	}

	var dot, na, nb float64
	i, j := 0, 0
	for i < len(a.spec) || j < len(b.spec) {
		switch {
		case j >= len(b.spec) || (i < len(a.spec) && a.spec[i].Mass < b.spec[j].Mass):
			v := transform(a.spec[i].Intensity)
			na += v * v
			i++
		case i >= len(a.spec) || a.spec[i].Mass > b.spec[j].Mass:
			v := transform(b.spec[j].Intensity)
			nb += v * v
			j++
		default:
			va := transform(a.spec[i].Intensity)
			vb := transform(b.spec[j].Intensity)
			dot += va * vb
			na += va * va
			nb += vb * vb
			i++
			j++
		}
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// similarityMatrix scores every row representative of a against every row
// representative of b. Each cell is a pure function of two immutable
// representatives, so rows are filled concurrently.
func (c *Config) similarityMatrix(a, b []rowRep) [][]float64 {
	sim := make([][]float64, len(a))
	rows := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < c.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				cells := make([]float64, len(b))
				for j := range b {
					cells[j] = c.similarity(a[i], b[j])
				}
				sim[i] = cells
			}
		}()
	}
	for i := range a {
		rows <- i
	}
	close(rows)
	wg.Wait()
	return sim
}
