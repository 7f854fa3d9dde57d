// Package span implements the document span store: half-open character
// ranges over a document's text, grouped into sorted tiers that support
// overlap queries, containment grouping and overlap elimination.
//
// Offsets are byte offsets into Document.Text.
package span

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// ErrDegenerateSpan is returned when a span would be empty or fall outside
// its document.
var ErrDegenerateSpan = errors.New(errors.CodeSpanInvalid, "span must satisfy 0 <= start < end <= len(text)")

// Key identifies a span by its range. Two spans with equal keys cover the
// same text.
type Key struct {
	Start int
	End   int
}

// Span is a labeled half-open range [Start, End) over a Document.
// Spans are immutable once built; Data carries the annotator payload, if any.
type Span struct {
	Start int
	End   int
	Label string
	Data  any

	doc     *Document
	members []*Span

	textOnce sync.Once
	text     string
}

// New builds a span over doc. An empty label defaults to the covered text.
func New(doc *Document, start, end int, label string) (*Span, error) {
	if doc == nil || start < 0 || start >= end || end > len(doc.Text) {
		textLen := -1
		if doc != nil {
			textLen = len(doc.Text)
		}
		return nil, ErrDegenerateSpan.WithDetailf("start=%d end=%d len=%d", start, end, textLen)
	}
	s := &Span{Start: start, End: end, Label: label, doc: doc}
	if label == "" {
		s.Label = s.Text()
	}
	return s, nil
}

// MustNew is New for offsets already known to be valid. It panics otherwise.
func MustNew(doc *Document, start, end int, label string) *Span {
	s, err := New(doc, start, end, label)
	if err != nil {
		panic(err)
	}
	return s
}

// NewGroup builds a span covering the union bounds of members. The members
// must share a document and at least one must be given.
func NewGroup(members []*Span, label string) (*Span, error) {
	if len(members) == 0 {
		return nil, ErrDegenerateSpan.WithDetail("span group has no members")
	}
	doc := members[0].doc
	start, end := members[0].Start, members[0].End
	for _, m := range members[1:] {
		if m.doc != doc {
			return nil, errors.InvalidParam("span group members belong to different documents")
		}
		if m.Start < start {
			start = m.Start
		}
		if m.End > end {
			end = m.End
		}
	}
	g, err := New(doc, start, end, label)
	if err != nil {
		return nil, err
	}
	g.members = append([]*Span(nil), members...)
	return g, nil
}

// WithData returns a copy of s carrying data.
func (s *Span) WithData(label string, data any) *Span {
	if label == "" {
		label = s.Label
	}
	return &Span{Start: s.Start, End: s.End, Label: label, Data: data, doc: s.doc, members: s.members}
}

// Doc returns the owning document.
func (s *Span) Doc() *Document { return s.doc }

// Members returns the base spans of a group span, or nil.
func (s *Span) Members() []*Span { return s.members }

// Key returns the range identity of s.
func (s *Span) Key() Key { return Key{Start: s.Start, End: s.End} }

// Size is the span length in bytes.
func (s *Span) Size() int { return s.End - s.Start }

// Text returns the covered document text, computed once.
func (s *Span) Text() string {
	s.textOnce.Do(func() {
		s.text = s.doc.Text[s.Start:s.End]
	})
	return s.text
}

// Overlaps reports whether the two ranges share at least one offset.
func (s *Span) Overlaps(other *Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Contains reports whether other lies entirely within s.
func (s *Span) Contains(other *Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// ComesBefore reports whether s ends at or before other starts with at most
// maxDist characters between them.
func (s *Span) ComesBefore(other *Span, maxDist int) bool {
	return s.End <= other.Start && other.Start-s.End <= maxDist
}

// ExtendedThrough returns a new span from s.Start to other.End.
func (s *Span) ExtendedThrough(other *Span) (*Span, error) {
	return New(s.doc, s.Start, other.End, "")
}

func (s *Span) String() string {
	return fmt.Sprintf("%d-%d:%s", s.Start, s.End, s.Label)
}

// MarshalJSON writes the span without its document back-reference.
func (s *Span) MarshalJSON() ([]byte, error) {
	out := struct {
		Start int    `json:"start"`
		End   int    `json:"end"`
		Label string `json:"label"`
		Text  string `json:"text"`
		Data  any    `json:"data,omitempty"`
	}{s.Start, s.End, s.Label, s.Text(), s.Data}
	return json.Marshal(out)
}

//Personal.AI order the ending
