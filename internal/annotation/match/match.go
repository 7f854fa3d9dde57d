// Package match composes token-level pattern matches into larger matches:
// ordered sequences (Follows), unordered proximity groups (Near), labeled
// sub-matches (Label) and overlap-free unions (Combine).
//
// Matches never cross sentence boundaries; positions are word indices within
// the sentence.
package match

import (
	"fmt"
	"strings"
)

// Word is a token inside a sentence.
type Word struct {
	Index int    // position within the sentence
	Text  string
	Start int    // document byte offset
	End   int
}

// Sentence is an ordered run of words.
type Sentence struct {
	Index int
	Words []Word
}

// Match is a contiguous word range within one sentence.
type Match interface {
	Sentence() *Sentence
	FirstWord() int
	LastWord() int
	Words() []Word
	// Text joins the covered words with single spaces.
	Text() string
	// Len is the number of covered words.
	Len() int
	// Start and End are the document byte offsets of the first and last word.
	Start() int
	End() int
}

type wordRange struct {
	sentence    *Sentence
	first, last int
}

func (r wordRange) Sentence() *Sentence { return r.sentence }
func (r wordRange) FirstWord() int      { return r.first }
func (r wordRange) LastWord() int       { return r.last }
func (r wordRange) Words() []Word       { return r.sentence.Words[r.first : r.last+1] }
func (r wordRange) Len() int            { return r.last - r.first + 1 }
func (r wordRange) Start() int          { return r.sentence.Words[r.first].Start }
func (r wordRange) End() int            { return r.sentence.Words[r.last].End }

func (r wordRange) Text() string {
	parts := make([]string, 0, r.Len())
	for _, w := range r.Words() {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// Phrase is a primitive match produced by a token pattern. Value carries
// whatever the pattern parsed (a number, a normalized keyword).
type Phrase struct {
	wordRange
	Value any
}

// NewPhrase builds a primitive match over words [first, last] of s.
func NewPhrase(s *Sentence, first, last int, value any) (*Phrase, error) {
	if s == nil || first < 0 || first > last || last >= len(s.Words) {
		n := -1
		if s != nil {
			n = len(s.Words)
		}
		return nil, fmt.Errorf("match: phrase [%d, %d] outside sentence of %d words", first, last, n)
	}
	return &Phrase{wordRange: wordRange{sentence: s, first: first, last: last}, Value: value}, nil
}

func (p *Phrase) String() string { return fmt.Sprintf("Phrase(%q)", p.Text()) }

// MetaMatch is a composite of sub-matches from one sentence. Its range runs
// from the smallest first word to the largest last word of its sub-matches.
type MetaMatch struct {
	wordRange
	matches []Match
	labels  []string
}

func newMetaMatch(matches []Match, labels []string) *MetaMatch {
	first, last := matches[0].FirstWord(), matches[0].LastWord()
	for _, m := range matches[1:] {
		if m.FirstWord() < first {
			first = m.FirstWord()
		}
		if m.LastWord() > last {
			last = m.LastWord()
		}
	}
	return &MetaMatch{
		wordRange: wordRange{sentence: matches[len(matches)-1].Sentence(), first: first, last: last},
		matches:   matches,
		labels:    labels,
	}
}

// Matches returns the direct sub-matches in order.
func (m *MetaMatch) Matches() []Match { return m.matches }

// Labels returns the label of each direct sub-match; "" means unlabeled.
func (m *MetaMatch) Labels() []string { return m.labels }

// GroupDict returns the labeled sub-matches. Unlabeled composite sub-matches
// contribute their own labeled entries; a labeled composite is returned
// as-is so callers can descend into it.
func (m *MetaMatch) GroupDict() map[string]Match {
	out := make(map[string]Match)
	for i, sub := range m.matches {
		label := ""
		if i < len(m.labels) {
			label = m.labels[i]
		}
		if label != "" {
			out[label] = sub
			continue
		}
		if meta, ok := sub.(*MetaMatch); ok {
			for k, v := range meta.GroupDict() {
				out[k] = v
			}
		}
	}
	return out
}

// Group looks up a labeled sub-match, descending through unlabeled composites.
func (m *MetaMatch) Group(name string) (Match, bool) {
	g, ok := m.GroupDict()[name]
	return g, ok
}

// IterateMatches returns every primitive match nested in m, depth first.
func (m *MetaMatch) IterateMatches() []Match {
	var out []Match
	for _, sub := range m.matches {
		if meta, ok := sub.(*MetaMatch); ok {
			out = append(out, meta.IterateMatches()...)
			continue
		}
		out = append(out, sub)
	}
	return out
}

// MatchLength is the number of distinct words covered by primitive
// sub-matches, ignoring the gaps between them. With includeOverlap, a word
// covered by several sub-matches counts once per sub-match.
func (m *MetaMatch) MatchLength(includeOverlap bool) int {
	counts := make(map[int]int)
	for _, sub := range m.IterateMatches() {
		for i := sub.FirstWord(); i <= sub.LastWord(); i++ {
			counts[i]++
		}
	}
	if !includeOverlap {
		return len(counts)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func (m *MetaMatch) String() string {
	parts := make([]string, len(m.matches))
	for i, sub := range m.matches {
		parts[i] = fmt.Sprint(sub)
	}
	return "MetaMatch(" + strings.Join(parts, ", ") + ")"
}

//Personal.AI order the ending
