package classifier

import (
	"github.com/spf13/viper"

	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// FeatureNames lists the candidate features in vector order. The first ten
// are local to the candidate, the last four come from nearby mentions.
var FeatureNames = []string{
	"log_population",
	"name_count",
	"num_spans",
	"max_span_length",
	"canonical_name_used",
	"nes_contained",
	"ambiguity",
	"ppl_feature_code",
	"adm_feature_code",
	"cont_feature_code",
	"close_locations",
	"containing_locations",
	"max_containment_level",
	"inv_closest_location_distance_km",
}

// ModelSet holds the two models the annotator scores with: the base model
// sees only local features (its contextual coefficients are zero), the
// contextual model sees all of them.
type ModelSet struct {
	Base       Model `mapstructure:"base" json:"base"`
	Contextual Model `mapstructure:"contextual" json:"contextual"`
}

var (
	baseCoefficients = []float64{
		0.30,  // log_population
		0.02,  // name_count
		0.20,  // num_spans
		0.10,  // max_span_length
		0.80,  // canonical_name_used
		1.50,  // nes_contained
		-0.30, // ambiguity
		0.40,  // ppl_feature_code
		0.60,  // adm_feature_code
		-1.00, // cont_feature_code
		0, 0, 0, 0,
	}
	contextualCoefficients = []float64{0.30, 0.50, 0.20, 1.00}
)

// DefaultModelSet returns the built-in coefficients.
func DefaultModelSet() ModelSet {
	base := append([]float64(nil), baseCoefficients...)
	ctx := append([]float64(nil), baseCoefficients[:len(baseCoefficients)-len(contextualCoefficients)]...)
	ctx = append(ctx, contextualCoefficients...)
	return ModelSet{
		Base: Model{
			Name:         "geoname-base",
			Features:     append([]string(nil), FeatureNames...),
			Intercept:    -4.0,
			Coefficients: base,
		},
		Contextual: Model{
			Name:         "geoname-contextual",
			Features:     append([]string(nil), FeatureNames...),
			Intercept:    -4.0,
			Coefficients: ctx,
		},
	}
}

// LoadModelSet reads a YAML or JSON model file with top-level "base" and
// "contextual" sections. An empty path selects DefaultModelSet.
func LoadModelSet(path string) (ModelSet, error) {
	if path == "" {
		return DefaultModelSet(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return ModelSet{}, errors.Wrap(err, errors.ErrCodeClassifierNotLoaded, "failed to read classifier model file").WithDetail(path)
	}
	var set ModelSet
	if err := v.Unmarshal(&set); err != nil {
		return ModelSet{}, errors.Wrap(err, errors.ErrCodeClassifierModelInvalid, "failed to decode classifier model file").WithDetail(path)
	}
	if set.Base.Name == "" {
		set.Base.Name = "base"
	}
	if set.Contextual.Name == "" {
		set.Contextual.Name = "contextual"
	}
	if err := set.Validate(); err != nil {
		return ModelSet{}, err
	}
	return set, nil
}

// Validate checks both models and that they share a width.
func (s ModelSet) Validate() error {
	if err := s.Base.Validate(); err != nil {
		return err
	}
	if err := s.Contextual.Validate(); err != nil {
		return err
	}
	if s.Base.Width() != s.Contextual.Width() {
		return errors.New(errors.ErrCodeClassifierModelInvalid, "base and contextual models differ in width").
			WithDetailf("%d vs %d", s.Base.Width(), s.Contextual.Width())
	}
	return nil
}

// Scorers builds a scorer for each model.
func (s ModelSet) Scorers() (base, contextual *LogisticScorer, err error) {
	if base, err = NewLogisticScorer(s.Base); err != nil {
		return nil, nil, err
	}
	if contextual, err = NewLogisticScorer(s.Contextual); err != nil {
		return nil, nil, err
	}
	return base, contextual, nil
}

//Personal.AI order the ending
