package repo

import (
	"fmt"
	"time"

	"github.com/meetingguide/backend/internal/config"
	"github.com/meetingguide/backend/internal/domain"
	"github.com/meetingguide/backend/internal/source"
)

// Dataset is one fully built, immutable data set: canonical records in
// load order, the per-facet indexes, and the capabilities the records
// support. A new load replaces the whole Dataset; nothing inside one is
// ever mutated, which is what makes serving reads without record locks
// safe.
type Dataset struct {
	// Slugs lists every meeting in source order. This is the base result
	// order of an unfiltered query.
	Slugs []string

	// Meetings maps slug to record.
	Meetings map[string]domain.Meeting

	// Indexes are the stable facet lookup tables (distance excluded; that
	// one depends on a reference point and is built per query).
	Indexes domain.Indexes

	// Capabilities is the logical OR of per-record support across the set.
	Capabilities domain.Capabilities
}

// Build normalizes, derives, and indexes a full set of source rows.
// Row-level defects never fail a build; they default or drop per field.
// now anchors the derived next-occurrence instants.
func Build(rows []source.RawRow, settings config.Settings, defaultTimezone string, now time.Time) *Dataset {
	n := newNormalizer(defaultTimezone)

	ds := &Dataset{
		Slugs:    make([]string, 0, len(rows)),
		Meetings: make(map[string]domain.Meeting, len(rows)),
	}

	meetings := make([]domain.Meeting, 0, len(rows))
	for _, row := range rows {
		m := n.normalize(row)
		deriveSchedule(&m, settings, now)
		meetings = append(meetings, m)
		ds.Slugs = append(ds.Slugs, m.Slug)
		ds.Meetings[m.Slug] = m
	}

	ds.Indexes = buildIndexes(meetings, settings)
	ds.Capabilities = capabilitiesOf(meetings, settings)

	return ds
}

// capabilitiesOf computes the data set's capabilities as a pure function
// of the record set: one pass, logical OR per facet.
func capabilitiesOf(meetings []domain.Meeting, settings config.Settings) domain.Capabilities {
	var c domain.Capabilities
	for _, m := range meetings {
		c.Coordinates = c.Coordinates || m.HasCoordinates()
		c.Weekday = c.Weekday || m.WeekdayBucket != ""
		c.Time = c.Time || m.TimeBucket != ""
		c.Type = c.Type || len(m.Types) > 0
		c.Region = c.Region || len(m.Regions) > 0
	}
	c.Geolocation = c.Coordinates && settings.Geolocation
	return c
}

// Get returns the meeting identified by slug.
// Returns domain.ErrNotFound when the slug is not in this data set.
func (ds *Dataset) Get(slug string) (domain.Meeting, error) {
	m, ok := ds.Meetings[slug]
	if !ok {
		return domain.Meeting{}, fmt.Errorf("repo.Dataset.Get: %q: %w", slug, domain.ErrNotFound)
	}
	return m, nil
}
