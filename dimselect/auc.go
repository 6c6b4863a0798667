package dimselect

import "sort"

// rankAUC computes the Mann–Whitney AUC of pos over neg on tie-averaged
// ranks: AUC = (R_pos − n_pos(n_pos+1)/2) / (n_pos · n_neg), where R_pos
// is the sum of 1-based ranks held by positive scores in the pooled
// ordering. Tied scores share the mean of the ranks they span, so equal
// pos/neg scores contribute exactly one half.
func rankAUC(pos, neg []float64) float64 {
	type scored struct {
		score float64
		pos   bool
	}

	all := make([]scored, 0, len(pos)+len(neg))
	for _, s := range pos {
		all = append(all, scored{score: s, pos: true})
	}
	for _, s := range neg {
		all = append(all, scored{score: s})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score < all[j].score })

	rankSum := 0.0
	for lo := 0; lo < len(all); {
		hi := lo
		for hi+1 < len(all) && all[hi+1].score == all[lo].score {
			hi++
		}
		// 1-based ranks lo+1..hi+1 averaged across the tie run.
		avg := float64(lo+hi+2) / 2
		for t := lo; t <= hi; t++ {
			if all[t].pos {
				rankSum += avg
			}
		}
		lo = hi + 1
	}

	np, nn := float64(len(pos)), float64(len(neg))

	return (rankSum - np*(np+1)/2) / (np * nn)
}
