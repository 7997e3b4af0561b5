package align

import (
	"context"
	"sync"
)

// entry is one member of the multiple aligner's working set.
type entry struct {
	id   int
	rank int // smallest original run index the entry contains
	al   *Alignment
}

// Multiple combines N peak lists (as trivial alignments) into one consensus
// alignment by progressive merging: the pair of working-set entries with the
// highest achievable pairwise similarity is aligned and merged first, so the
// most reliable virtual peaks are built before more dissimilar runs join.
//
// Candidate pair alignments are computed concurrently; the working set
// itself is only updated between selections, one merge at a time. The final
// alignment's columns follow the input declaration order.
func Multiple(ctx context.Context, cfg Config, runs []*Alignment) (*Alignment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, ErrTooFewRuns
	}

	declared := make([]string, 0, len(runs))
	seen := make(map[string]bool)
	for _, r := range runs {
		for _, id := range r.runIDs {
			if seen[id] {
				return nil, ErrDuplicateRun
			}
			seen[id] = true
			declared = append(declared, id)
		}
	}

	working := make([]entry, len(runs))
	for i, r := range runs {
		working[i] = entry{id: i, rank: i, al: r}
	}
	nextID := len(runs)

	// Candidate merges survive rounds that do not touch their entries.
	cache := make(map[[2]int]*Alignment)

	for len(working) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := fillCandidates(cfg, working, cache); err != nil {
			return nil, err
		}

		// Pick the most similar pair; ties fall back to declaration
		// order of the entries involved.
		bi, bj := 0, 1
		best := cache[pairKey(working[0], working[1])]
		for i := 0; i < len(working)-1; i++ {
			for j := i + 1; j < len(working); j++ {
				cand := cache[pairKey(working[i], working[j])]
				if cand.score > best.score {
					bi, bj, best = i, j, cand
				}
			}
		}

		merged := entry{
			id:   nextID,
			rank: working[bi].rank,
			al:   best,
		}
		nextID++

		for _, stale := range []entry{working[bi], working[bj]} {
			for key := range cache {
				if key[0] == stale.id || key[1] == stale.id {
					delete(cache, key)
				}
			}
		}

		working = append(working[:bj], working[bj+1:]...)
		working[bi] = merged
	}

	return working[0].al.reorder(declared), nil
}

func pairKey(a, b entry) [2]int {
	return [2]int{a.id, b.id}
}

// fillCandidates computes every missing pairwise alignment of the working
// set. Candidates are independent of each other, so they run concurrently
// up to the configured worker count.
func fillCandidates(cfg Config, working []entry, cache map[[2]int]*Alignment) error {
	type job struct{ i, j int }
	var jobs []job
	for i := 0; i < len(working)-1; i++ {
		for j := i + 1; j < len(working); j++ {
			if _, ok := cache[pairKey(working[i], working[j])]; !ok {
				jobs = append(jobs, job{i, j})
			}
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	results := make([]*Alignment, len(jobs))
	errs := make([]error, len(jobs))
	idx := make(chan int)

	var wg sync.WaitGroup
	workers := cfg.workers()
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range idx {
				// The lower-ranked entry goes first so gap
				// tie-breaks follow declaration order.
				results[k], errs[k] = Pairwise(working[jobs[k].i].al, working[jobs[k].j].al, cfg)
			}
		}()
	}
	for k := range jobs {
		idx <- k
	}
	close(idx)
	wg.Wait()

	for k, err := range errs {
		if err != nil {
			return err
		}
		cache[pairKey(working[jobs[k].i], working[jobs[k].j])] = results[k]
	}
	return nil
}
