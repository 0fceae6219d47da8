package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TimeBucket labels one slice of the day for the time facet. Ranges are
// half-open [Start, End) in minutes since local midnight; End < Start
// means the bucket wraps past midnight (night). The exact boundaries are
// a presentation choice, not a business rule, so they are deployment
// settings rather than code constants.
type TimeBucket struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// Settings are the tunable display and bucketing constants, optionally
// loaded from a YAML file. Zero values fall back to the defaults the
// hosted meeting guide ships with.
type Settings struct {
	// TimeBuckets partition the day for the time facet, in display order.
	TimeBuckets []TimeBucket `yaml:"time_buckets"`

	// DistanceUnit is "mi" or "km".
	DistanceUnit string `yaml:"distance_unit"`

	// DistanceBuckets are the selectable maximum radii for the distance
	// facet, ascending.
	DistanceBuckets []int `yaml:"distance_buckets"`

	// TypeNames maps type codes to display names ("O" -> "Open").
	// Codes without an entry display as the bare code.
	TypeNames map[string]string `yaml:"type_names"`

	// RegionPriority and TypePriority pin values to the front of their
	// facet's display order; everything else follows alphabetically.
	RegionPriority []string `yaml:"region_priority"`
	TypePriority   []string `yaml:"type_priority"`

	// Geolocation enables "near me" mode for deployments whose clients
	// may use device location.
	Geolocation bool `yaml:"geolocation"`
}

// DefaultSettings returns the built-in settings: four time buckets
// matching the labels the meeting guide UI renders, miles, and the stock
// radius choices.
func DefaultSettings() Settings {
	return Settings{
		TimeBuckets: []TimeBucket{
			{Name: "morning", Start: 4 * 60, End: 12 * 60},
			{Name: "midday", Start: 12 * 60, End: 17 * 60},
			{Name: "evening", Start: 17 * 60, End: 21 * 60},
			{Name: "night", Start: 21 * 60, End: 4 * 60},
		},
		DistanceUnit:    "mi",
		DistanceBuckets: []int{1, 2, 5, 10, 25, 50, 100},
		Geolocation:     true,
	}
}

// LoadSettings reads settings from the YAML file at path, merged over the
// defaults. An empty path returns the defaults unchanged.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config.LoadSettings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("config.LoadSettings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("config.LoadSettings: %w", err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.DistanceUnit != "mi" && s.DistanceUnit != "km" {
		return fmt.Errorf("distance_unit must be mi or km, got %q", s.DistanceUnit)
	}
	if len(s.TimeBuckets) == 0 {
		return fmt.Errorf("time_buckets must not be empty")
	}
	for _, b := range s.TimeBuckets {
		if b.Name == "" {
			return fmt.Errorf("time bucket with empty name")
		}
		if b.Start < 0 || b.Start >= 24*60 || b.End < 0 || b.End > 24*60 {
			return fmt.Errorf("time bucket %q out of range", b.Name)
		}
	}
	if len(s.DistanceBuckets) == 0 {
		return fmt.Errorf("distance_buckets must not be empty")
	}
	if !sort.IntsAreSorted(s.DistanceBuckets) {
		return fmt.Errorf("distance_buckets must be ascending")
	}
	return nil
}

// BucketFor returns the name of the time bucket containing the local time
// expressed as minutes since midnight, or "" if no bucket claims it.
// Buckets are checked in order; a wrapping bucket (End < Start) matches
// times on either side of midnight.
func (s Settings) BucketFor(minutes int) string {
	for _, b := range s.TimeBuckets {
		if b.End < b.Start {
			if minutes >= b.Start || minutes < b.End {
				return b.Name
			}
		} else if minutes >= b.Start && minutes < b.End {
			return b.Name
		}
	}
	return ""
}
