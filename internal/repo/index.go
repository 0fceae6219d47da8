package repo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/meetingguide/backend/internal/config"
	"github.com/meetingguide/backend/internal/domain"
)

// weekdayOrder is the fixed display order of the weekday facet,
// calendar order starting Sunday.
var weekdayOrder = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// buildIndexes scans all meetings once and builds the stable per-facet
// lookup tables. Every meeting appears under each facet value it carries
// (a meeting with three types files under all three), never twice under
// the same value, and never under a facet it has no value for.
func buildIndexes(meetings []domain.Meeting, settings config.Settings) domain.Indexes {
	weekday := map[string][]string{}
	timeBucket := map[string][]string{}
	types := map[string][]string{}
	region := map[string][]string{}

	for _, m := range meetings {
		if m.WeekdayBucket != "" {
			weekday[m.WeekdayBucket] = append(weekday[m.WeekdayBucket], m.Slug)
		}
		if m.TimeBucket != "" {
			timeBucket[m.TimeBucket] = append(timeBucket[m.TimeBucket], m.Slug)
		}
		for _, t := range m.Types {
			types[t] = append(types[t], m.Slug)
		}
		for _, r := range dedupe(m.Regions) {
			region[r] = append(region[r], m.Slug)
		}
	}

	ix := domain.Indexes{}

	for _, day := range weekdayOrder {
		if slugs, ok := weekday[day]; ok {
			ix.Weekday = append(ix.Weekday, domain.IndexEntry{Key: day, Name: day, Slugs: slugs})
		}
	}

	for _, b := range settings.TimeBuckets {
		if slugs, ok := timeBucket[b.Name]; ok {
			ix.Time = append(ix.Time, domain.IndexEntry{Key: b.Name, Name: b.Name, Slugs: slugs})
		}
	}

	for _, code := range orderedKeys(types, settings.TypePriority) {
		name := code
		if friendly, ok := settings.TypeNames[code]; ok {
			name = friendly
		}
		ix.Type = append(ix.Type, domain.IndexEntry{Key: code, Name: name, Slugs: types[code]})
	}

	for _, r := range orderedKeys(region, settings.RegionPriority) {
		ix.Region = append(ix.Region, domain.IndexEntry{Key: r, Name: r, Slugs: region[r]})
	}

	return ix
}

// orderedKeys returns the observed facet values in display order: values
// from the priority list first (in list order), everything else
// alphabetically, case-insensitive.
func orderedKeys(byValue map[string][]string, priority []string) []string {
	rest := make([]string, 0, len(byValue))
	pinned := map[string]bool{}
	var out []string

	for _, p := range priority {
		if _, ok := byValue[p]; ok {
			out = append(out, p)
			pinned[p] = true
		}
	}
	for v := range byValue {
		if !pinned[v] {
			rest = append(rest, v)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		return strings.ToLower(rest[i]) < strings.ToLower(rest[j])
	})
	return append(out, rest...)
}

// BuildDistanceIndex files meetings under each radius bucket whose bound
// their distance fits inside, in load order. It is rebuilt from scratch on
// every reference-point change; every other facet index is stable for the
// life of the data set.
func BuildDistanceIndex(slugs []string, distances map[string]float64, settings config.Settings) []domain.IndexEntry {
	out := make([]domain.IndexEntry, 0, len(settings.DistanceBuckets))
	for _, bound := range settings.DistanceBuckets {
		entry := domain.IndexEntry{
			Key:  strconv.Itoa(bound),
			Name: fmt.Sprintf("within %d %s", bound, settings.DistanceUnit),
		}
		for _, slug := range slugs {
			if d, ok := distances[slug]; ok && d <= float64(bound) {
				entry.Slugs = append(entry.Slugs, slug)
			}
		}
		out = append(out, entry)
	}
	return out
}
