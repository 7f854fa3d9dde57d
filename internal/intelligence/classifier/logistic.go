// Package classifier scores geoname candidate feature vectors with a
// logistic-regression model. Coefficients come from a model file or from
// the built-in defaults; training happens elsewhere.
package classifier

import (
	"context"
	"math"

	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is a binary logistic-regression model.
type Model struct {
	Name string `mapstructure:"name" json:"name"`
	// Features names each coefficient, in vector order. Optional; when set it
	// must be as long as Coefficients.
	Features     []string  `mapstructure:"features" json:"features,omitempty"`
	Intercept    float64   `mapstructure:"intercept" json:"intercept"`
	Coefficients []float64 `mapstructure:"coefficients" json:"coefficients"`
}

// Validate checks the model is usable.
func (m Model) Validate() error {
	if len(m.Coefficients) == 0 {
		return errors.New(errors.ErrCodeClassifierModelInvalid, "model has no coefficients").WithDetail(m.Name)
	}
	if len(m.Features) > 0 && len(m.Features) != len(m.Coefficients) {
		return errors.New(errors.ErrCodeClassifierModelInvalid, "feature names and coefficients differ in length").
			WithDetailf("%s: %d names, %d coefficients", m.Name, len(m.Features), len(m.Coefficients))
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New(errors.ErrCodeClassifierModelInvalid, "coefficient is not finite").
				WithDetailf("%s[%d]", m.Name, i)
		}
	}
	return nil
}

// Width is the expected feature-vector length.
func (m Model) Width() int { return len(m.Coefficients) }

// ---------------------------------------------------------------------------
// LogisticScorer
// ---------------------------------------------------------------------------

// LogisticScorer evaluates a Model. It is safe for concurrent use.
type LogisticScorer struct {
	model Model
}

// NewLogisticScorer validates m and wraps it.
func NewLogisticScorer(m Model) (*LogisticScorer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	coef := make([]float64, len(m.Coefficients))
	copy(coef, m.Coefficients)
	m.Coefficients = coef
	return &LogisticScorer{model: m}, nil
}

// Model returns the wrapped model.
func (s *LogisticScorer) Model() Model { return s.model }

// PredictProba returns [p_negative, p_positive] for each row, in order.
func (s *LogisticScorer) PredictProba(ctx context.Context, rows [][]float64) ([][2]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCanceled, "classifier call canceled")
	}
	out := make([][2]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(s.model.Coefficients) {
			return nil, errors.New(errors.ErrCodeClassifierInputInvalid, "feature vector has wrong width").
				WithDetailf("row %d: got %d, model %s expects %d", i, len(row), s.model.Name, len(s.model.Coefficients))
		}
		z := s.model.Intercept
		for j, x := range row {
			z += s.model.Coefficients[j] * x
		}
		p := sigmoid(z)
		out[i] = [2]float64{1 - p, p}
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

//Personal.AI order the ending
