// Package patientinfo extracts case counts and patient descriptions (age,
// sex, status) from sentences using small keyword grammars composed with the
// match package.
package patientinfo

import (
	"context"

	"github.com/turtacn/EpiAnnotator/internal/annotation/match"
	"github.com/turtacn/EpiAnnotator/internal/annotation/span"
	"github.com/turtacn/EpiAnnotator/internal/annotation/tokenize"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// Case statuses.
const (
	StatusCase            = "case"
	StatusDeath           = "death"
	StatusHospitalization = "hospitalization"
	StatusInfection       = "infection"
)

// Quantity is a parsed number, range or bound. At most one of Number,
// RangeStart/RangeEnd, Min and Max is set.
type Quantity struct {
	Number      *int `json:"number,omitempty"`
	RangeStart  *int `json:"range_start,omitempty"`
	RangeEnd    *int `json:"range_end,omitempty"`
	Min         *int `json:"min,omitempty"`
	Max         *int `json:"max,omitempty"`
	Approximate bool `json:"approximate,omitempty"`
}

// Age describes a patient age or age group.
type Age struct {
	Quantity
	YearUnits  bool `json:"year_units,omitempty"`
	MonthUnits bool `json:"month_units,omitempty"`
	Child      bool `json:"child,omitempty"`
}

// Count is a number of cases with their status.
type Count struct {
	Quantity
	Status string `json:"status,omitempty"`
}

// Attributes is the data attached to every patientInfo span.
type Attributes struct {
	Age    *Age   `json:"age,omitempty"`
	Female bool   `json:"female,omitempty"`
	Male   bool   `json:"male,omitempty"`
	Count  *Count `json:"count,omitempty"`
}

// Config tunes the grammar.
type Config struct {
	// NearWords is the word gap allowed between the parts of one patient
	// description.
	NearWords int
	// CountMaxGap is the word gap allowed between a number and its status word.
	CountMaxGap int
}

// DefaultConfig returns the default grammar settings.
func DefaultConfig() Config {
	return Config{NearWords: 6, CountMaxGap: 2}
}

// Annotator builds the patientInfo tier.
type Annotator struct {
	cfg    Config
	logger logging.Logger
}

// NewAnnotator builds an annotator; a nil logger discards output.
func NewAnnotator(cfg Config, logger logging.Logger) *Annotator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.NearWords < 0 {
		cfg.NearWords = 0
	}
	if cfg.CountMaxGap < 0 {
		cfg.CountMaxGap = 0
	}
	return &Annotator{cfg: cfg, logger: logger}
}

// Annotate reads the sentences and tokens tiers of doc and installs the
// patientInfo tier. Each span is labeled with its text and carries
// Attributes.
func (a *Annotator) Annotate(ctx context.Context, doc *span.Document) (*span.Tier, error) {
	sentences, err := tokenize.Sentences(doc)
	if err != nil {
		return nil, err
	}

	var spans []*span.Span
	for _, s := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCanceled, "patient info extraction canceled")
		}
		for _, m := range a.sentenceMatches(s) {
			sp, err := spanOf(doc, m)
			if err != nil {
				return nil, err
			}
			spans = append(spans, sp)
		}
	}

	tier := span.NewTier(spans...)
	doc.SetTier(span.TierPatientInfo, tier)
	a.logger.Debug("patient info annotated",
		logging.DocumentID(doc.ID),
		logging.Int("sentences", len(sentences)),
		logging.Int("spans", tier.Len()))
	return tier, nil
}

func spanOf(doc *span.Document, m match.Match) (*span.Span, error) {
	sp, err := span.New(doc, m.Start(), m.End(), "")
	if err != nil {
		return nil, err
	}
	return sp.WithData(sp.Text(), attributesOf(m)), nil
}

//Personal.AI order the ending
