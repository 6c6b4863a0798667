package mantel

import "sort"

// ranks returns 1-based tie-averaged ranks of v, the rank transform
// behind Spearman correlation. Tied values share the mean of the ranks
// they span.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	out := make([]float64, len(v))
	for lo := 0; lo < len(idx); {
		hi := lo
		for hi+1 < len(idx) && v[idx[hi+1]] == v[idx[lo]] {
			hi++
		}
		avg := float64(lo+hi+2) / 2
		for t := lo; t <= hi; t++ {
			out[idx[t]] = avg
		}
		lo = hi + 1
	}

	return out
}
