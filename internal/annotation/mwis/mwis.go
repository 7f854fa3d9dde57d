// Package mwis selects a maximum-weight set of pairwise non-overlapping
// half-open intervals (weighted interval scheduling).
package mwis

import (
	"sort"
)

// Interval is a half-open range [Start, End) with a weight and a payload.
type Interval[T any] struct {
	Start  int
	End    int
	Weight float64
	Value  T
}

// Overlaps reports whether two half-open intervals share an offset.
func (iv Interval[T]) Overlaps(other Interval[T]) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Find returns the maximum-total-weight subset of intervals in which no two
// overlap, ordered by start. Intervals with Start >= End are ignored.
//
// Among equal-weight solutions the one reached by skipping the later-ending
// interval wins; callers wanting a specific tie-break fold it into Weight.
func Find[T any](intervals []Interval[T]) []Interval[T] {
	ivs := make([]Interval[T], 0, len(intervals))
	for _, iv := range intervals {
		if iv.Start < iv.End {
			ivs = append(ivs, iv)
		}
	}
	if len(ivs) == 0 {
		return nil
	}

	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].End != ivs[j].End {
			return ivs[i].End < ivs[j].End
		}
		return ivs[i].Start < ivs[j].Start
	})

	n := len(ivs)
	// pred[i] is the number of intervals (by end order) that finish at or
	// before ivs[i] starts, i.e. the DP index of its compatible prefix.
	pred := make([]int, n)
	for i, iv := range ivs {
		pred[i] = sort.Search(i, func(k int) bool { return ivs[k].End > iv.Start })
	}

	// best[i] is the optimum over the first i intervals.
	best := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		take := ivs[i-1].Weight + best[pred[i-1]]
		if take > best[i-1] {
			best[i] = take
		} else {
			best[i] = best[i-1]
		}
	}

	var chosen []Interval[T]
	for i := n; i > 0; {
		take := ivs[i-1].Weight + best[pred[i-1]]
		if take > best[i-1] {
			chosen = append(chosen, ivs[i-1])
			i = pred[i-1]
		} else {
			i--
		}
	}

	sort.SliceStable(chosen, func(i, j int) bool {
		if chosen[i].Start != chosen[j].Start {
			return chosen[i].Start < chosen[j].Start
		}
		return chosen[i].End < chosen[j].End
	})
	return chosen
}

// TotalWeight sums the weights of intervals.
func TotalWeight[T any](intervals []Interval[T]) float64 {
	var sum float64
	for _, iv := range intervals {
		sum += iv.Weight
	}
	return sum
}

//Personal.AI order the ending
