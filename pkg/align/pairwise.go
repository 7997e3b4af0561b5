package align

import (
	"github.com/ChrisMcGann/gcalign/pkg/core"
)

// Edit-graph moves, in tie-break preference order: a diagonal match beats
// either gap, and the gap consuming a row of the earlier-declared side beats
// the one consuming the later side. The preference is applied during the
// fill so the backtrace never compares floats.
type move uint8

const (
	moveNone move = iota
	moveMatch
	moveGapB // consumes a row of a; b gets a gap
	moveGapA // consumes a row of b; a gets a gap
)

// Pairwise aligns two alignments, producing the highest-scoring monotonic
// correspondence that allows unmatched rows on either side. Each row is
// represented by its virtual peak for scoring. Deterministic given identical
// inputs and configuration.
func Pairwise(a, b *Alignment, cfg Config) (*Alignment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, id := range b.runIDs {
		for _, other := range a.runIDs {
			if id == other {
				return nil, ErrDuplicateRun
			}
		}
	}

	m, n := len(a.rows), len(b.rows)
	sim := cfg.similarityMatrix(a.representatives(), b.representatives())

	score := make([][]float64, m+1)
	moves := make([][]move, m+1)
	for i := range score {
		score[i] = make([]float64, n+1)
		moves[i] = make([]move, n+1)
	}
	for i := 1; i <= m; i++ {
		score[i][0] = -cfg.Gap * float64(i)
		moves[i][0] = moveGapB
	}
	for j := 1; j <= n; j++ {
		score[0][j] = -cfg.Gap * float64(j)
		moves[0][j] = moveGapA
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			best := score[i-1][j] - cfg.Gap
			bestMove := moveGapB
			if left := score[i][j-1] - cfg.Gap; left > best {
				best = left
				bestMove = moveGapA
			}
			// Sub-threshold similarities never become matches, even
			// where the diagonal would be numerically cheaper than
			// two gaps. A zero score marks a pair outside the time
			// tolerance, which stays unmatchable at any threshold.
			if s := sim[i-1][j-1]; s > 0 && s >= cfg.MinSimilarity {
				if diag := score[i-1][j-1] + s; diag >= best {
					best = diag
					bestMove = moveMatch
				}
			}
			score[i][j] = best
			moves[i][j] = bestMove
		}
	}

	numA, numB := len(a.runIDs), len(b.runIDs)
	var rows []Row
	for i, j := m, n; i > 0 || j > 0; {
		peaks := make([]*core.Peak, numA+numB)
		switch moves[i][j] {
		case moveMatch:
			copy(peaks, a.rows[i-1].peaks)
			copy(peaks[numA:], b.rows[j-1].peaks)
			i--
			j--
		case moveGapB:
			copy(peaks, a.rows[i-1].peaks)
			i--
		case moveGapA:
			copy(peaks[numA:], b.rows[j-1].peaks)
			j--
		}
		rows = append(rows, Row{peaks: peaks})
	}
	// The backtrace produced rows last-to-first.
	for l, r := 0, len(rows)-1; l < r; l, r = l+1, r-1 {
		rows[l], rows[r] = rows[r], rows[l]
	}

	return &Alignment{
		runIDs: append(append([]string(nil), a.runIDs...), b.runIDs...),
		rows:   rows,
		score:  normaliseScore(score[m][n], m, n),
	}, nil
}

// normaliseScore converts a raw DP score into a size-independent similarity
// used to rank candidate merges.
func normaliseScore(raw float64, m, n int) float64 {
	short := m
	if n < short {
		short = n
	}
	if short == 0 {
		return 0
	}
	return raw / float64(short)
}

// MatchedPairs lists the (runA peak, runB peak) pairs matched between two
// specific runs of an alignment, in row order. Rows where either run has a
// gap are skipped.
func (a *Alignment) MatchedPairs(runA, runB string) [][2]*core.Peak {
	ia, ib := -1, -1
	for i, id := range a.runIDs {
		switch id {
		case runA:
			ia = i
		case runB:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return nil
	}
	var pairs [][2]*core.Peak
	for _, row := range a.rows {
		if row.peaks[ia] != nil && row.peaks[ib] != nil {
			pairs = append(pairs, [2]*core.Peak{row.peaks[ia], row.peaks[ib]})
		}
	}
	return pairs
}
