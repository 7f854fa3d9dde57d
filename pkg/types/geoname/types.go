// Package geoname defines the gazetteer record and resolved-location types
// shared by the gazetteer stores, the disambiguation engine and the CLI
// output.
package geoname

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is one gazetteer entry returned by a name lookup.
type Record struct {
	GeonameID    string  `json:"geonameid"`
	Name         string  `json:"name"`
	ASCIIName    string  `json:"asciiname,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	FeatureClass string  `json:"feature_class,omitempty"`
	FeatureCode  string  `json:"feature_code"`
	CountryCode  string  `json:"country_code"`
	Admin1Code   string  `json:"admin1_code"`
	Admin2Code   string  `json:"admin2_code"`
	Admin3Code   string  `json:"admin3_code"`
	Admin4Code   string  `json:"admin4_code"`
	Population   int64   `json:"population"`
	Timezone     string  `json:"timezone,omitempty"`

	// NameCount is the number of alternate names the record carries.
	NameCount int `json:"name_count"`
	// NamesUsed lists the alternate names that matched the lookup.
	NamesUsed []string `json:"names_used,omitempty"`
}

// AdminCodes returns the country code followed by admin1..admin4, from least
// to most specific.
func (r *Record) AdminCodes() [5]string {
	return [5]string{r.CountryCode, r.Admin1Code, r.Admin2Code, r.Admin3Code, r.Admin4Code}
}

// HasFeaturePrefix reports whether the feature code starts with prefix.
func (r *Record) HasFeaturePrefix(prefix string) bool {
	return strings.HasPrefix(r.FeatureCode, prefix)
}

// MergeNamesUsed adds names not already present, keeping the list sorted.
func (r *Record) MergeNamesUsed(names ...string) {
	seen := make(map[string]struct{}, len(r.NamesUsed)+len(names))
	for _, n := range r.NamesUsed {
		seen[n] = struct{}{}
	}
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		r.NamesUsed = append(r.NamesUsed, n)
	}
	sort.Strings(r.NamesUsed)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	c.NamesUsed = append([]string(nil), r.NamesUsed...)
	return &c
}

// Location is a resolved record as emitted on the geonames tier.
type Location struct {
	Record
	Score          float64   `json:"score"`
	ParentLocation *Location `json:"parent_location,omitempty"`
}

// NormalizeName folds a place name into the lookup key form shared by the
// gazetteer and the ngram index: NFKC, trimmed, lower case.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(name)))
}

// SortRecords orders records by GeonameID.
func SortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].GeonameID < records[j].GeonameID })
}

//Personal.AI order the ending
