package geoname

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Feature indexes into Features. The order is the classifier's input order.
type Feature int

const (
	FeatLogPopulation Feature = iota
	FeatNameCount
	FeatNumSpans
	FeatMaxSpanLength
	FeatCanonicalNameUsed
	FeatNEsContained
	FeatAmbiguity
	FeatPPLFeatureCode
	FeatADMFeatureCode
	FeatCONTFeatureCode
	FeatCloseLocations
	FeatContainingLocations
	FeatMaxContainmentLevel
	FeatInvClosestLocationDistanceKm

	NumFeatures
)

// FirstContextualFeature is the first feature derived from nearby mentions.
const FirstContextualFeature = FeatCloseLocations

var featureNames = [NumFeatures]string{
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

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return "unknown"
	}
	return featureNames[f]
}

// FeatureNames returns the feature names in vector order.
func FeatureNames() []string {
	out := make([]string, NumFeatures)
	copy(out, featureNames[:])
	return out
}

// Features is a candidate's fixed-order feature vector.
type Features [NumFeatures]float64

// Values returns the vector as a slice for the classifier.
func (f *Features) Values() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, f[:])
	return out
}

// Map returns the vector keyed by feature name.
func (f *Features) Map() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, v := range f {
		out[featureNames[i]] = v
	}
	return out
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// localFeatures fills the features that depend only on the candidate, its
// attached spans and its alternates.
func (r *run) localFeatures(c *Candidate) {
	rec := c.Record
	f := &c.Features
	f[FeatLogPopulation] = math.Log(float64(rec.Population) + 1)
	f[FeatNameCount] = float64(rec.NameCount)
	f[FeatNumSpans] = float64(len(c.spans))

	maxLen, neOverlap, totalLen := 0, 0, 0
	canonical := false
	for _, key := range c.SpanKeys() {
		sp := r.spans[key]
		text := sp.Text()
		n := utf8.RuneCountInString(text)
		if n > maxLen {
			maxLen = n
		}
		if text == rec.Name {
			canonical = true
		}
		totalLen += n
		for _, ne := range r.nes.SpansInSpan(sp) {
			if ne.Label == r.e.cfg.PlaceEntityLabel {
				neOverlap += utf8.RuneCountInString(ne.Text())
			}
		}
	}
	f[FeatMaxSpanLength] = float64(maxLen)
	f[FeatCanonicalNameUsed] = boolFeature(canonical)
	if totalLen > 0 {
		f[FeatNEsContained] = float64(neOverlap) / float64(totalLen)
	}
	f[FeatAmbiguity] = float64(len(r.alternates[c.ID]))
	f[FeatPPLFeatureCode] = boolFeature(strings.HasPrefix(rec.FeatureCode, "PPL"))
	f[FeatADMFeatureCode] = boolFeature(strings.HasPrefix(rec.FeatureCode, "ADM"))
	f[FeatCONTFeatureCode] = boolFeature(strings.HasPrefix(rec.FeatureCode, "CONT"))
}

// contextualFeatures overwrites the nearby-mention features of c.
func (r *run) contextualFeatures(c *Candidate) {
	var nearCount, containing, maxLevel int
	var invClosest float64
	for _, id := range r.nearby[c.ID] {
		other := r.candidates[id].Record
		level := ContainmentLevel(c.Record, other)
		if l := ContainmentLevel(other, c.Record); l > level {
			level = l
		}
		if level > 0 {
			containing++
		}
		if level > maxLevel {
			maxLevel = level
		}
		d := DistanceKm(other, c.Record)
		if d < r.e.cfg.CloseDistanceKm {
			nearCount++
		}
		if d < r.e.cfg.MinDistanceKm {
			d = r.e.cfg.MinDistanceKm
		}
		if inv := 1 / d; inv > invClosest {
			invClosest = inv
		}
	}
	f := &c.Features
	f[FeatCloseLocations] = float64(nearCount)
	f[FeatContainingLocations] = float64(containing)
	f[FeatMaxContainmentLevel] = float64(maxLevel)
	f[FeatInvClosestLocationDistanceKm] = invClosest
}

//Personal.AI order the ending
