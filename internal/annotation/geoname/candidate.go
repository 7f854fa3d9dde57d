package geoname

import (
	"sort"

	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// CandidateID is a candidate's handle in the per-document arena.
type CandidateID int

// NoCandidate marks an absent parent.
const NoCandidate CandidateID = -1

// Candidate is a gazetteer record under evaluation as the referent of one
// or more spans.
type Candidate struct {
	ID     CandidateID
	Record *gtypes.Record
	// Parent is the administrative division named right after one of the
	// candidate's spans ("WA" in "Seattle, WA"), or NoCandidate.
	Parent         CandidateID
	Features       Features
	BaseScore      float64
	Score          float64
	HighConfidence bool

	spans map[span.Key]struct{}
}

func newCandidate(id CandidateID, rec *gtypes.Record) *Candidate {
	return &Candidate{ID: id, Record: rec, Parent: NoCandidate, spans: make(map[span.Key]struct{})}
}

func (c *Candidate) attach(k span.Key) { c.spans[k] = struct{}{} }

// HasSpan reports whether the span range is attached to c.
func (c *Candidate) HasSpan(k span.Key) bool {
	_, ok := c.spans[k]
	return ok
}

// SpanKeys returns the attached span ranges sorted by (Start, End).
func (c *Candidate) SpanKeys() []span.Key {
	keys := make([]span.Key, 0, len(c.spans))
	for k := range c.spans {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []span.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Start != keys[j].Start {
			return keys[i].Start < keys[j].Start
		}
		return keys[i].End < keys[j].End
	})
}

func (c *Candidate) sharesSpanWith(o *Candidate) bool {
	small, large := c.spans, o.spans
	if len(small) > len(large) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
