package geoname

import (
	"fmt"

	"github.com/turtacn/EpiAnnotator/internal/config"
)

// DefaultBlocklist holds capitalized words that name places in the gazetteer
// but almost never do so in surveillance reports.
var DefaultBlocklist = []string{
	"January", "February", "March", "April", "May", "June", "July",
	"August", "September", "October", "November", "December",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"North", "East", "West", "South",
	"Northeast", "Southeast", "Northwest", "Southwest",
	"Eastern", "Western", "Southern", "Northern",
	"About", "Many", "See", "As", "Health", "International", "City", "World",
	"Federal", "Federal District", "British", "Russian", "Valley",
	"University", "Center", "Central",
	"National Institutes of Health", "Centers for Disease Control",
	"Ministry of Health and Sanitation",
}

// Config carries the engine constants.
type Config struct {
	// Blocklist entries are compared with the exact span text.
	Blocklist []string
	// ScoreThreshold is exclusive: a candidate must score above it.
	ScoreThreshold          float64
	HighConfidenceThreshold float64
	// BufferSize is the capacity of the recent high-confidence mention ring.
	BufferSize int
	// LookaheadOffset is how many characters ahead of a span a buffered
	// mention may start and still count as nearby.
	LookaheadOffset int
	// CompoundMaxGap bounds the characters between the two halves of a
	// compound reference such as "Seattle, WA".
	CompoundMaxGap   int
	CloseDistanceKm  float64
	MinDistanceKm    float64
	PlaceEntityLabel string
}

// DefaultConfig returns the standard constants.
func DefaultConfig() Config {
	return Config{
		Blocklist:               append([]string(nil), DefaultBlocklist...),
		ScoreThreshold:          0.2,
		HighConfidenceThreshold: 0.5,
		BufferSize:              10,
		LookaheadOffset:         50,
		CompoundMaxGap:          4,
		CloseDistanceKm:         500,
		MinDistanceKm:           1,
		PlaceEntityLabel:        "GPE",
	}
}

// ConfigFromSettings builds a Config from the application settings. The
// extra blocklist is appended to DefaultBlocklist.
func ConfigFromSettings(a config.AnnotatorConfig) Config {
	cfg := DefaultConfig()
	cfg.Blocklist = append(cfg.Blocklist, a.ExtraBlocklist...)
	cfg.ScoreThreshold = a.ScoreThreshold
	cfg.HighConfidenceThreshold = a.HighConfidenceThreshold
	cfg.BufferSize = a.BufferSize
	cfg.LookaheadOffset = a.LookaheadOffset
	cfg.CompoundMaxGap = a.CompoundMaxGap
	cfg.CloseDistanceKm = a.CloseDistanceKm
	cfg.MinDistanceKm = a.MinDistanceKm
	if a.PlaceEntityLabel != "" {
		cfg.PlaceEntityLabel = a.PlaceEntityLabel
	}
	return cfg
}

func (c Config) validate() error {
	switch {
	case c.ScoreThreshold < 0 || c.ScoreThreshold >= 1:
		return fmt.Errorf("score threshold %v outside [0, 1)", c.ScoreThreshold)
	case c.HighConfidenceThreshold < 0 || c.HighConfidenceThreshold >= 1:
		return fmt.Errorf("high confidence threshold %v outside [0, 1)", c.HighConfidenceThreshold)
	case c.BufferSize < 1:
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	case c.LookaheadOffset < 0 || c.CompoundMaxGap < 0:
		return fmt.Errorf("lookahead offset and compound gap must not be negative")
	case c.CloseDistanceKm <= 0 || c.MinDistanceKm <= 0:
		return fmt.Errorf("distance radii must be positive")
	}
	return nil
}

//Personal.AI order the ending
