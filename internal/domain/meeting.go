// Package domain contains the core data types for the Meeting Guide API.
// This package has zero external dependencies and is imported by every other
// internal package (source, repo, service, handler).
package domain

import "time"

// Meeting is the canonical record for one recurring group meeting.
// It is immutable after normalization: the two query-dependent values
// (distance from a reference point, active-right-now) live in side tables
// keyed by Slug, never on the record itself.
type Meeting struct {
	// Slug uniquely identifies the meeting within one loaded data set.
	// It is taken from the source when provided, otherwise derived from
	// name, address, and time.
	Slug string `json:"slug"`

	Name             string `json:"name"`
	Location         string `json:"location,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`
	Notes            string `json:"notes,omitempty"`
	LocationNotes    string `json:"location_notes,omitempty"`
	Group            string `json:"group,omitempty"`
	GroupNotes       string `json:"group_notes,omitempty"`
	District         string `json:"district,omitempty"`

	// Types holds meeting type codes (e.g. "O", "M", "X") in source order.
	// Never nil: a meeting without types carries an empty slice so index
	// building never distinguishes missing from empty.
	Types []string `json:"types"`

	// Regions is the region path as listed by the source, e.g.
	// ["Manhattan", "Midtown"]. Never nil.
	Regions []string `json:"regions"`

	// Day is the meeting's weekday (Sunday..Saturday) in its own timezone.
	// Nil for meetings with no schedule (e.g. online-only resources).
	Day *time.Weekday `json:"day,omitempty"`

	// Time and EndTime are local wall-clock times in "15:04" form.
	// EndTime may be numerically earlier than Time, meaning the meeting
	// runs past midnight into the next day.
	Time    string `json:"time,omitempty"`
	EndTime string `json:"end_time,omitempty"`

	// Timezone is the IANA zone the meeting's schedule is expressed in.
	Timezone string `json:"timezone"`

	// Start and End are the next occurrence of the meeting as zoned
	// instants in its own timezone, derived after normalization.
	// Nil when the meeting has no schedule.
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	// WeekdayBucket and TimeBucket are the facet values this meeting files
	// under ("Sunday".."Saturday"; "morning"/"midday"/"evening"/"night").
	// Empty when the meeting has no schedule.
	WeekdayBucket string `json:"weekday,omitempty"`
	TimeBucket    string `json:"time_bucket,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	IsInPerson bool `json:"is_in_person"`
	IsOnline   bool `json:"is_online"`

	// IsActive is false for meetings marked permanently closed in the
	// source. Inactive meetings still load and index, so a direct link
	// keeps working, but renderers badge them.
	IsActive bool `json:"is_active"`

	// Approximate marks a location that is approximate (e.g. geocoded from
	// a postal code rather than a street address).
	Approximate bool `json:"approximate"`

	// Contact and conference details, display-only.
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Website             string `json:"website,omitempty"`
	Venmo               string `json:"venmo,omitempty"`
	Square              string `json:"square,omitempty"`
	Paypal              string `json:"paypal,omitempty"`
	ConferenceURL       string `json:"conference_url,omitempty"`
	ConferenceURLNotes  string `json:"conference_url_notes,omitempty"`
	ConferencePhone     string `json:"conference_phone,omitempty"`
	ConferencePhoneNote string `json:"conference_phone_notes,omitempty"`
	ConferenceProvider  string `json:"conference_provider,omitempty"`

	// Updated is a provenance string from the source, passed through as-is.
	Updated string `json:"updated,omitempty"`

	// Search is the precomputed lowercase blob free-text search matches
	// against: name, location, notes, group, and region names joined.
	Search string `json:"-"`
}

// HasCoordinates reports whether the meeting carries a validated
// latitude/longitude pair.
func (m Meeting) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Duration returns the length of one occurrence: EndTime minus Time on
// the same day, wrapping to the following day when EndTime is not after
// Time (a meeting running past midnight), and one hour when no end time
// is listed.
func (m Meeting) Duration() time.Duration {
	start, err := time.Parse("15:04", m.Time)
	if err != nil {
		return 0
	}
	if m.EndTime == "" {
		return time.Hour
	}
	end, err := time.Parse("15:04", m.EndTime)
	if err != nil {
		return time.Hour
	}
	d := end.Sub(start)
	if d <= 0 {
		d += 24 * time.Hour
	}
	return d
}

// HasSchedule reports whether the meeting has a weekly day and start time.
// Meetings without a schedule never appear in weekday/time facets and are
// never considered active.
func (m Meeting) HasSchedule() bool {
	return m.Day != nil && m.Time != ""
}
