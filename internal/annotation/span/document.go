package span

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// Well-known tier names.
const (
	TierSentences   = "sentences"
	TierTokens      = "tokens"
	TierNgrams      = "ngrams"
	TierNEs         = "nes"
	TierGeonames    = "geonames"
	TierPatientInfo = "patientInfo"
)

// Document owns the text and the named tiers annotated over it.
type Document struct {
	ID   string
	Text string
	Date time.Time

	tiers map[string]*Tier
}

// NewDocument builds an empty-tiered document.
func NewDocument(id, text string) *Document {
	return &Document{ID: id, Text: text, tiers: make(map[string]*Tier)}
}

// SetTier installs t under name, replacing any existing tier.
func (d *Document) SetTier(name string, t *Tier) {
	d.tiers[name] = t
}

// Tier returns the named tier.
func (d *Document) Tier(name string) (*Tier, bool) {
	t, ok := d.tiers[name]
	return t, ok
}

// MustTier returns the named tier or a CodeMissingTier error.
func (d *Document) MustTier(name string) (*Tier, error) {
	t, ok := d.tiers[name]
	if !ok {
		return nil, errors.New(errors.CodeMissingTier, "required tier missing from document").WithDetail(name)
	}
	return t, nil
}

// HasTiers reports whether every named tier exists.
func (d *Document) HasTiers(names ...string) bool {
	for _, n := range names {
		if _, ok := d.tiers[n]; !ok {
			return false
		}
	}
	return true
}

// TierNames returns the installed tier names in lexical order.
func (d *Document) TierNames() []string {
	names := make([]string, 0, len(d.tiers))
	for n := range d.tiers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Span builds a span over d.
func (d *Document) Span(start, end int, label string) (*Span, error) {
	return New(d, start, end, label)
}

// MarshalJSON emits the document with all of its tiers.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Export())
}

// Snapshot is the serializable view of a document.
type Snapshot struct {
	ID    string             `json:"id,omitempty"`
	Date  *time.Time         `json:"date,omitempty"`
	Tiers map[string][]*Span `json:"tiers"`
}

// Export returns the serializable view restricted to names, or every tier.
func (d *Document) Export(names ...string) Snapshot {
	if len(names) == 0 {
		names = d.TierNames()
	}
	out := Snapshot{ID: d.ID, Tiers: make(map[string][]*Span, len(names))}
	if !d.Date.IsZero() {
		dt := d.Date
		out.Date = &dt
	}
	for _, n := range names {
		if t, ok := d.tiers[n]; ok {
			out.Tiers[n] = t.Spans()
		}
	}
	return out
}

//Personal.AI order the ending
