package geoname

import (
	"strings"

	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// Containment ladder levels. Higher is more specific.
const (
	LevelNone    = 0
	LevelCountry = 1
	LevelADM1    = 2
	LevelADM2    = 3
	LevelADM3    = 4
	LevelADM4    = 5
)

// LadderLevel returns the specificity level of a feature code, or LevelNone
// for codes outside the ladder (populated places, continents, ...).
func LadderLevel(featureCode string) int {
	switch {
	case len(featureCode) > 3 && strings.HasPrefix(featureCode, "PCL"):
		return LevelCountry
	case featureCode == "ADM1":
		return LevelADM1
	case featureCode == "ADM2":
		return LevelADM2
	case featureCode == "ADM3":
		return LevelADM3
	case featureCode == "ADM4":
		return LevelADM4
	}
	return LevelNone
}

// ContainmentLevel reports how outer structurally contains inner: the
// ladder level of outer when every code from the country down to that level
// is set on outer and equal on inner, otherwise LevelNone. A record never
// contains itself, and never contains a record at the same or a broader
// ladder level.
func ContainmentLevel(outer, inner *gtypes.Record) int {
	if outer.GeonameID == inner.GeonameID {
		return LevelNone
	}
	level := LadderLevel(outer.FeatureCode)
	if level == LevelNone {
		return LevelNone
	}
	if innerLevel := LadderLevel(inner.FeatureCode); innerLevel != LevelNone && innerLevel <= level {
		return LevelNone
	}
	outerCodes, innerCodes := outer.AdminCodes(), inner.AdminCodes()
	for i := 0; i < level; i++ {
		if outerCodes[i] == "" || outerCodes[i] != innerCodes[i] {
			return LevelNone
		}
	}
	return level
}

//Personal.AI order the ending
