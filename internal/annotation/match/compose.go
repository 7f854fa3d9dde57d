package match

// Defaults for Follows and Near.
const (
	DefaultMaxOverlap       = 5
	DefaultNearWordsBetween = 30
)

// Results is a list of matches, optionally labeled so that composites
// built from it expose each element under Label.
type Results struct {
	Label   string
	Matches []Match
}

// List wraps unlabeled matches.
func List(ms ...Match) Results { return Results{Matches: ms} }

// Labeled wraps matches under name.
func Labeled(name string, ms []Match) Results { return Results{Label: name, Matches: ms} }

// follows reports whether b may come after a: same sentence, b does not end
// before a starts, b does not start more than maxOverlap words before a's
// end, and b starts within maxWordsBetween words after a's end.
func follows(a, b Match, maxWordsBetween, maxOverlap int) bool {
	if a.Sentence() != b.Sentence() {
		return false
	}
	aStart, aEnd := a.FirstWord(), a.LastWord()
	bStart, bEnd := b.FirstWord(), b.LastWord()
	if bEnd < aStart {
		return false
	}
	if aEnd-maxOverlap >= bStart {
		return false
	}
	if aEnd+maxWordsBetween+1 < bStart {
		return false
	}
	return true
}

// Follows returns every sequence taking one match from each list, in list
// order, where each match follows the previous one. Each sequence becomes a
// MetaMatch labeled with the list labels.
func Follows(lists []Results, maxWordsBetween, maxOverlap int) []Match {
	if len(lists) == 0 {
		return nil
	}
	sequences := [][]Match{{}}
	for _, list := range lists {
		var next [][]Match
		for _, m := range list.Matches {
			for _, seq := range sequences {
				if len(seq) == 0 || follows(seq[len(seq)-1], m, maxWordsBetween, maxOverlap) {
					extended := make([]Match, len(seq), len(seq)+1)
					copy(extended, seq)
					next = append(next, append(extended, m))
				}
			}
		}
		sequences = next
	}

	labels := make([]string, len(lists))
	for i, l := range lists {
		labels[i] = l.Label
	}
	out := make([]Match, 0, len(sequences))
	for _, seq := range sequences {
		out = append(out, newMetaMatch(seq, labels))
	}
	return out
}

// Near returns Follows over every ordering of every subset of two or more of
// the non-empty lists, so matches are grouped regardless of order.
func Near(lists []Results, maxWordsBetween int) []Match {
	var nonEmpty []Results
	for _, l := range lists {
		if len(l.Matches) > 0 {
			nonEmpty = append(nonEmpty, l)
		}
	}
	var out []Match
	for k := 2; k <= len(nonEmpty); k++ {
		permutations(len(nonEmpty), k, func(idx []int) {
			perm := make([]Results, k)
			for i, j := range idx {
				perm[i] = nonEmpty[j]
			}
			out = append(out, Follows(perm, maxWordsBetween, DefaultMaxOverlap)...)
		})
	}
	return out
}

// permutations calls fn with each k-permutation of [0, n) in lexicographic
// order.
func permutations(n, k int, fn func([]int)) {
	used := make([]bool, n)
	cur := make([]int, 0, k)
	var rec func()
	rec = func() {
		if len(cur) == k {
			fn(cur)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, i)
			rec()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	rec()
}

// Label tags every match in list with name.
func Label(name string, list []Match) []Match {
	return Follows([]Results{Labeled(name, list)}, 0, DefaultMaxOverlap)
}

// Preference reports whether a should be kept over an overlapping b.
type Preference func(a, b Match) bool

// PreferFirst keeps whichever match comes first in the input lists.
func PreferFirst(_, _ Match) bool { return true }

// PreferLongerText keeps the match whose covering text is longer.
func PreferLongerText(a, b Match) bool {
	return len(a.Text()) >= len(b.Text())
}

// PreferLongerMatch keeps the match covering more words with its
// sub-matches; on a tie the shorter, denser text wins.
func PreferLongerMatch(a, b Match) bool {
	aLen, bLen := matchLength(a), matchLength(b)
	if aLen == bLen {
		return len(a.Text()) <= len(b.Text())
	}
	return aLen > bLen
}

func matchLength(m Match) int {
	if meta, ok := m.(*MetaMatch); ok {
		return meta.MatchLength(false)
	}
	return m.Len()
}

// Combine merges lists into one while removing overlapping matches. Two
// matches in the same sentence overlap when their word ranges come within
// maxProximity words of each other. Matches are taken in input order; each
// is compared with every remaining match it overlaps, dropped if prefer
// rejects it against any of them, and otherwise kept while the matches it
// beat are discarded. A nil prefer means PreferFirst.
func Combine(lists [][]Match, prefer Preference, maxProximity int) []Match {
	if len(lists) == 0 {
		return nil
	}
	if prefer == nil {
		prefer = PreferFirst
	}

	var rest []Match
	switch {
	case len(lists) == 2:
		rest = lists[1]
	case len(lists) > 2:
		rest = Combine(lists[1:], prefer, maxProximity)
	}

	remaining := make([]Match, 0, len(lists[0])+len(rest))
	remaining = append(remaining, lists[0]...)
	remaining = append(remaining, rest...)

	var out []Match
	for len(remaining) > 0 {
		a := remaining[0]
		remaining = remaining[1:]

		keep := true
		var beaten []Match
		for _, b := range remaining {
			if a.Sentence() != b.Sentence() || !withinProximity(a, b, maxProximity) {
				continue
			}
			if !prefer(a, b) {
				keep = false
				break
			}
			beaten = append(beaten, b)
		}
		if !keep {
			continue
		}
		if !contains(out, a) {
			out = append(out, a)
		}
		if len(beaten) > 0 {
			remaining = without(remaining, beaten)
		}
	}
	return out
}

func withinProximity(a, b Match, p int) bool {
	aStart, aEnd := a.FirstWord(), a.LastWord()
	bStart, bEnd := b.FirstWord(), b.LastWord()
	return (aStart+p >= bStart && aStart-p <= bEnd) ||
		(bStart+p >= aStart && bStart-p <= aEnd)
}

func contains(ms []Match, m Match) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

func without(ms []Match, drop []Match) []Match {
	out := ms[:0:0]
	for _, m := range ms {
		if !contains(drop, m) {
			out = append(out, m)
		}
	}
	return out
}

//Personal.AI order the ending
