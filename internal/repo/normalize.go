// Package repo holds the in-memory meeting data set: normalization of raw
// source rows, derived schedule attributes, and the per-facet indexes the
// filter evaluator reads. It is the data-access layer of the API; there is
// no database, the source document is the system of record.
package repo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meetingguide/backend/internal/domain"
	"github.com/meetingguide/backend/internal/source"
)

// normalizer converts raw rows into canonical Meetings. It carries the
// per-load state needed to keep slugs unique across one data set.
type normalizer struct {
	defaultTimezone string
	seen            map[string]int
}

func newNormalizer(defaultTimezone string) *normalizer {
	return &normalizer{
		defaultTimezone: defaultTimezone,
		seen:            map[string]int{},
	}
}

// normalize builds one Meeting from one raw row. It never fails: missing
// or malformed optional fields get documented defaults, and only the
// payload shape (handled upstream) can abort a load.
func (n *normalizer) normalize(row source.RawRow) domain.Meeting {
	m := domain.Meeting{
		Name:                str(row, "name"),
		Location:            str(row, "location"),
		LocationNotes:       str(row, "location_notes"),
		Notes:               str(row, "notes"),
		Group:               str(row, "group"),
		GroupNotes:          str(row, "group_notes"),
		District:            str(row, "district"),
		Timezone:            str(row, "timezone"),
		Email:               str(row, "email"),
		Phone:               str(row, "phone"),
		Website:             str(row, "website"),
		Venmo:               str(row, "venmo"),
		Square:              str(row, "square"),
		Paypal:              str(row, "paypal"),
		ConferenceURL:       str(row, "conference_url"),
		ConferenceURLNotes:  str(row, "conference_url_notes"),
		ConferencePhone:     str(row, "conference_phone"),
		ConferencePhoneNote: str(row, "conference_phone_notes"),
		ConferenceProvider:  str(row, "conference_provider"),
		Updated:             str(row, "updated"),
	}

	if m.Timezone == "" {
		m.Timezone = n.defaultTimezone
	}

	// Absence is the empty slice, never nil, so index building has no
	// missing-vs-empty special case.
	m.Types = dedupe(list(row, "types"))
	m.Regions = regions(row)

	m.FormattedAddress = str(row, "formatted_address")
	if m.FormattedAddress == "" {
		m.FormattedAddress = joinAddress(row)
	}

	m.Day = parseDay(row["day"])
	m.Time = parseClock(row["time"])
	m.EndTime = parseClock(row["end_time"])

	m.Latitude, m.Longitude = parseCoordinates(row["latitude"], row["longitude"])

	attendance := strings.ToLower(str(row, "attendance_option"))
	m.IsActive = attendance != "inactive"
	m.IsOnline = m.IsActive && (m.ConferenceURL != "" || m.ConferencePhone != "")
	m.IsInPerson = m.IsActive && attendance != "online" && m.FormattedAddress != ""

	m.Approximate = parseFlag(row["approximate"]) || m.FormattedAddress == ""

	m.Slug = n.slugFor(row, m)
	m.Search = searchBlob(m)

	return m
}

// slugFor picks the stable identifier: the provided slug, else one derived
// from name, address, and time, else a random one. Collisions within one
// load get a numeric suffix so the invariant "slug is unique per data set"
// holds even for sloppy sources.
func (n *normalizer) slugFor(row source.RawRow, m domain.Meeting) string {
	slug := slugify(str(row, "slug"))
	if slug == "" {
		parts := []string{m.Name, m.FormattedAddress, m.Time}
		if m.Day != nil {
			parts = append(parts, m.Day.String())
		}
		slug = slugify(strings.Join(parts, " "))
	}
	if slug == "" {
		slug = uuid.NewString()
	}

	n.seen[slug]++
	if c := n.seen[slug]; c > 1 {
		slug = fmt.Sprintf("%s-%d", slug, c)
	}
	return slug
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases s and collapses runs of non-alphanumerics to hyphens.
func slugify(s string) string {
	s = slugStrip.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// searchBlob joins the free-text-searchable fields into one lowercase
// string, computed once so filtering never re-walks the record.
func searchBlob(m domain.Meeting) string {
	parts := []string{m.Name, m.Location, m.FormattedAddress, m.Notes, m.LocationNotes, m.Group, m.GroupNotes, m.District}
	parts = append(parts, m.Regions...)
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, "\n"))
}

// ---- field coercion --------------------------------------------------------

// str reads a column as a trimmed string. Numbers are formatted, anything
// else is absent.
func str(row source.RawRow, key string) string {
	switch v := row[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// list reads a column as an ordered string slice: either a JSON array or a
// comma-separated string. Always non-nil.
func list(row source.RawRow, key string) []string {
	out := []string{}
	switch v := row[key].(type) {
	case []any:
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// regions returns the region path: the regions array as given, else
// region + sub_region in finest-to-coarsest listing order. Always non-nil.
func regions(row source.RawRow) []string {
	if rs := list(row, "regions"); len(rs) > 0 {
		return dedupe(rs)
	}
	out := []string{}
	if r := str(row, "region"); r != "" {
		out = append(out, r)
	}
	if sr := str(row, "sub_region"); sr != "" {
		out = append(out, sr)
	}
	return dedupe(out)
}

// joinAddress assembles a display address from split columns.
func joinAddress(row source.RawRow) string {
	var parts []string
	for _, key := range []string{"address", "city", "state", "postal_code", "country"} {
		if v := str(row, key); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// weekdayNames maps lowercase day names to weekdays for sources that spell
// days out instead of using 0..6.
var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// parseDay accepts 0..6 (number or numeric string, Sunday = 0) or an
// English day name. Anything else means the meeting has no weekday.
func parseDay(v any) *time.Weekday {
	switch d := v.(type) {
	case float64:
		if d == math.Trunc(d) && d >= 0 && d <= 6 {
			wd := time.Weekday(int(d))
			return &wd
		}
	case string:
		s := strings.ToLower(strings.TrimSpace(d))
		if i, err := strconv.Atoi(s); err == nil && i >= 0 && i <= 6 {
			wd := time.Weekday(i)
			return &wd
		}
		if wd, ok := weekdayNames[s]; ok {
			return &wd
		}
	}
	return nil
}

// parseClock accepts "15:04" (with optional seconds) and returns the
// canonical "15:04" form, or "" for anything unparsable.
func parseClock(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// parseCoordinates accepts a latitude/longitude pair only when both parse
// as finite numbers within valid ranges; otherwise both are nil.
func parseCoordinates(latRaw, lngRaw any) (*float64, *float64) {
	lat, latOK := parseFloat(latRaw)
	lng, lngOK := parseFloat(lngRaw)
	if !latOK || !lngOK {
		return nil, nil
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, nil
	}
	return &lat, &lng
}

func parseFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// parseFlag reads a yes/no column. Accepts booleans and the usual spreadsheet
// spellings.
func parseFlag(v any) bool {
	switch f := v.(type) {
	case bool:
		return f
	case string:
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "yes", "true", "1":
			return true
		}
	}
	return false
}
