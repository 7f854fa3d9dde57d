package span

import (
	"sort"

	"github.com/turtacn/EpiAnnotator/internal/annotation/mwis"
)

// Tier is an immutable collection of spans sorted by (Start, End). Ties keep
// insertion order.
type Tier struct {
	spans []*Span
}

// NewTier copies and sorts spans into a tier.
func NewTier(spans ...*Span) *Tier {
	out := make([]*Span, len(spans))
	copy(out, spans)
	sortSpans(out)
	return &Tier{spans: out}
}

func sortSpans(spans []*Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
}

// Len returns the number of spans.
func (t *Tier) Len() int { return len(t.spans) }

// Spans returns a copy of the sorted span slice.
func (t *Tier) Spans() []*Span {
	out := make([]*Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// At returns the i-th span in sort order.
func (t *Tier) At(i int) *Span { return t.spans[i] }

// Clone returns a tier sharing t's spans in a fresh slice.
func (t *Tier) Clone() *Tier { return &Tier{spans: t.Spans()} }

// Concat returns a new tier holding the spans of t and other.
func (t *Tier) Concat(other *Tier) *Tier {
	all := make([]*Span, 0, len(t.spans)+len(other.spans))
	all = append(all, t.spans...)
	all = append(all, other.spans...)
	sortSpans(all)
	return &Tier{spans: all}
}

// Labels returns the label of every span in order.
func (t *Tier) Labels() []string {
	out := make([]string, len(t.spans))
	for i, s := range t.spans {
		out[i] = s.Label
	}
	return out
}

// NextSpan returns the span following s in the tier, or nil when s is last or
// absent.
func (t *Tier) NextSpan(s *Span) *Span {
	for i, cur := range t.spans {
		if cur == s {
			if i+1 < len(t.spans) {
				return t.spans[i+1]
			}
			return nil
		}
	}
	return nil
}

func (t *Tier) filter(keep func(*Span) bool) []*Span {
	var out []*Span
	for _, s := range t.spans {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// SpansOver returns the spans sharing at least one offset with [start, end).
// An end <= start is treated as the single offset at start.
func (t *Tier) SpansOver(start, end int) []*Span {
	if end <= start {
		end = start + 1
	}
	return t.filter(func(s *Span) bool { return s.Start < end && start < s.End })
}

// SpansIn returns the spans lying entirely within [start, end).
func (t *Tier) SpansIn(start, end int) []*Span {
	return t.filter(func(s *Span) bool { return s.Start >= start && s.End <= end })
}

// SpansAt returns the spans with exactly the bounds [start, end).
func (t *Tier) SpansAt(start, end int) []*Span {
	return t.filter(func(s *Span) bool { return s.Start == start && s.End == end })
}

// SpansOverSpan is SpansOver for the bounds of s.
func (t *Tier) SpansOverSpan(s *Span) []*Span { return t.SpansOver(s.Start, s.End) }

// SpansInSpan is SpansIn for the bounds of s.
func (t *Tier) SpansInSpan(s *Span) []*Span { return t.SpansIn(s.Start, s.End) }

// SpansAtSpan is SpansAt for the bounds of s.
func (t *Tier) SpansAtSpan(s *Span) []*Span { return t.SpansAt(s.Start, s.End) }

// WithLabel returns a tier of the spans carrying label.
func (t *Tier) WithLabel(label string) *Tier {
	return &Tier{spans: t.filter(func(s *Span) bool { return s.Label == label })}
}

// SpanGroup pairs an outer span with the inner spans it contains.
type SpanGroup struct {
	Outer *Span
	Inner []*Span
}

// GroupSpansByContainingSpan groups the spans of other under each span of t
// that contains them. With allowPartial, any overlapping inner span is
// grouped. Without it, an inner span running past the outer end is skipped
// but not consumed, so a shorter span starting after it can still match.
//
// Both tiers are swept with cursors that only move forward.
func (t *Tier) GroupSpansByContainingSpan(other *Tier, allowPartial bool) []SpanGroup {
	inner := other.spans
	groups := make([]SpanGroup, 0, len(t.spans))
	cursor := 0
	for _, outer := range t.spans {
		for cursor < len(inner) {
			if allowPartial {
				if inner[cursor].End > outer.Start {
					break
				}
			} else if inner[cursor].Start >= outer.Start {
				break
			}
			cursor++
		}
		var group []*Span
		for j := cursor; j < len(inner); j++ {
			if inner[j].Start >= outer.End {
				break
			}
			if !allowPartial && inner[j].End > outer.End {
				continue
			}
			group = append(group, inner[j])
		}
		groups = append(groups, SpanGroup{Outer: outer, Inner: group})
	}
	return groups
}

// WithoutOverlaps returns the spans of t that overlap no span of other.
func (t *Tier) WithoutOverlaps(other *Tier) *Tier {
	var out []*Span
	for _, g := range t.GroupSpansByContainingSpan(other, true) {
		if len(g.Inner) == 0 {
			out = append(out, g.Outer)
		}
	}
	return &Tier{spans: out}
}

// CombinedAdjacentSpans merges runs of spans, each starting within maxDist
// characters of the previous span's end, into group spans.
func (t *Tier) CombinedAdjacentSpans(maxDist int) *Tier {
	var groups []*Span
	var run []*Span
	flush := func() {
		if len(run) == 0 {
			return
		}
		g, err := NewGroup(run, "")
		if err == nil {
			groups = append(groups, g)
		}
	}
	for i, s := range t.spans {
		if i > 0 && t.spans[i-1].End+maxDist < s.Start {
			flush()
			run = nil
		}
		run = append(run, s)
	}
	flush()
	return NewTier(groups...)
}

// Decider reports whether a should be retained against an overlapping b
// that is at least as large.
type Decider func(a, b *Span) bool

// FilterOverlappingSpans removes, for every overlapping pair, the span that
// is not larger. Overlap means either start lies inside the other's range. A
// span is dropped when some still-retained span at least as large overlaps it
// and decider is nil or rejects it. Spans already dropped no longer compete,
// so of two equal-sized spans without a decider the later one survives.
func (t *Tier) FilterOverlappingSpans(decider Decider) *Tier {
	removed := make([]bool, len(t.spans))
	var out []*Span
	for i, a := range t.spans {
		retain := true
		for j, b := range t.spans {
			if i == j || removed[j] {
				continue
			}
			startsInside := (b.Start >= a.Start && b.Start < a.End) || (a.Start >= b.Start && a.Start < b.End)
			if !startsInside || b.Size() < a.Size() {
				continue
			}
			if decider == nil || !decider(a, b) {
				retain = false
				removed[i] = true
			}
		}
		if retain {
			out = append(out, a)
		}
	}
	return &Tier{spans: out}
}

// Preference scores a span for OptimalSpanSet.
type Preference func(*Span) float64

// PreferTextLength weights a span by its length.
func PreferTextLength(s *Span) float64 { return float64(s.Size()) }

// OptimalSpanSet returns the non-overlapping subset of spans maximizing the
// summed preference. A nil preference means PreferTextLength.
func (t *Tier) OptimalSpanSet(prefer Preference) *Tier {
	if prefer == nil {
		prefer = PreferTextLength
	}
	intervals := make([]mwis.Interval[*Span], len(t.spans))
	for i, s := range t.spans {
		intervals[i] = mwis.Interval[*Span]{Start: s.Start, End: s.End, Weight: prefer(s), Value: s}
	}
	chosen := mwis.Find(intervals)
	out := make([]*Span, len(chosen))
	for i, c := range chosen {
		out[i] = c.Value
	}
	return NewTier(out...)
}

// WithNearbySpansFrom pairs spans of t with spans of other lying within
// maxDist characters of each other, in either order, as group spans.
func (t *Tier) WithNearbySpansFrom(other *Tier, maxDist int) *Tier {
	var out []*Span
	for _, a := range t.spans {
		for _, b := range other.spans {
			if a == b {
				continue
			}
			var g *Span
			var err error
			switch {
			case a.Overlaps(b), a.ComesBefore(b, maxDist):
				g, err = NewGroup([]*Span{a, b}, "")
			case b.ComesBefore(a, maxDist):
				g, err = NewGroup([]*Span{b, a}, "")
			default:
				continue
			}
			if err == nil {
				out = append(out, g)
			}
		}
	}
	return NewTier(out...)
}

//Personal.AI order the ending
