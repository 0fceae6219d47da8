package repo

import (
	"math"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/meetingguide/backend/internal/config"
	"github.com/meetingguide/backend/internal/domain"
)

// defaultDuration is assumed when a meeting lists a start time but no end.
const defaultDuration = 60 * time.Minute

// deriveSchedule fills the schedule-derived fields on m: the zoned
// next-occurrence instants, the weekday facet value, and the time-of-day
// bucket. All of it is computed in the meeting's own timezone, so a
// "Monday evening" meeting is Monday evening in its locale regardless of
// where the viewer is. Meetings without a schedule are left untouched and
// never enter the weekday/time facets.
func deriveSchedule(m *domain.Meeting, settings config.Settings, now time.Time) {
	if !m.HasSchedule() {
		return
	}

	m.WeekdayBucket = m.Day.String()

	hh, mm := clockParts(m.Time)
	m.TimeBucket = settings.BucketFor(hh*60 + mm)

	rule, err := weeklyRule(*m.Day, hh, mm, location(m.Timezone))
	if err != nil {
		return
	}

	dur := m.Duration()

	// The displayed occurrence is the in-progress one when now falls
	// inside its window, otherwise the next upcoming one.
	start := rule.Before(now, true)
	if start.IsZero() || !now.Before(start.Add(dur)) {
		start = rule.After(now, false)
	}
	if start.IsZero() {
		return
	}
	end := start.Add(dur)
	m.Start = &start
	m.End = &end
}

// ActiveAt reports whether the meeting's weekly window contains instant
// now. The window is [start, start+duration) of the most recent
// occurrence, which handles meetings running past midnight: their end
// time is numerically before their start time, so the duration wraps to
// the next day and a meeting joined before midnight stays active after.
func ActiveAt(m domain.Meeting, now time.Time) bool {
	if !m.HasSchedule() {
		return false
	}
	hh, mm := clockParts(m.Time)
	rule, err := weeklyRule(*m.Day, hh, mm, location(m.Timezone))
	if err != nil {
		return false
	}
	start := rule.Before(now, true)
	if start.IsZero() {
		return false
	}
	return !now.Before(start) && now.Before(start.Add(m.Duration()))
}

// weeklyRule builds the weekly recurrence for a meeting: anchored on the
// first matching weekday after a fixed epoch, at the meeting's wall-clock
// time, in its own zone.
func weeklyRule(day time.Weekday, hh, mm int, loc *time.Location) (*rrule.RRule, error) {
	// 2000-01-02 was a Sunday; walking forward at most six days lands the
	// anchor on the right weekday without any modular arithmetic.
	anchor := time.Date(2000, time.January, 2, hh, mm, 0, 0, loc)
	for anchor.Weekday() != day {
		anchor = anchor.AddDate(0, 0, 1)
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: anchor,
	})
}

// location resolves an IANA zone name, falling back to UTC for names the
// host has no data for. Normalization already substituted the configured
// default zone for rows with none, so this fallback only fires on typos
// in the source.
func location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// clockParts splits a canonical "15:04" string. Callers only pass values
// parseClock produced.
func clockParts(clock string) (hh, mm int) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// earthRadius by unit. Haversine works on any sphere; the unit choice
// only picks the radius constant.
var earthRadius = map[string]float64{
	"mi": 3959,
	"km": 6371,
}

// Distance returns the great-circle distance between the reference point
// and the meeting's coordinates in the configured unit, or nil when the
// meeting has no coordinates.
func Distance(refLat, refLng float64, m domain.Meeting, unit string) *float64 {
	if !m.HasCoordinates() {
		return nil
	}
	d := haversine(refLat, refLng, *m.Latitude, *m.Longitude, earthRadius[unit])
	return &d
}

// haversine computes the great-circle distance between two points on a
// sphere of radius r.
func haversine(lat1, lng1, lat2, lng2, r float64) float64 {
	const deg = math.Pi / 180
	dLat := (lat2 - lat1) * deg
	dLng := (lng2 - lng1) * deg
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * r * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
