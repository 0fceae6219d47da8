package domain

// Facet names. These double as the query parameter names of the HTTP
// boundary, so they are part of the de facto contract with the URL codec.
const (
	FacetWeekday  = "weekday"
	FacetTime     = "time"
	FacetType     = "type"
	FacetRegion   = "region"
	FacetDistance = "distance"
)

// Facets lists all facet names in display order.
var Facets = []string{FacetWeekday, FacetTime, FacetType, FacetRegion, FacetDistance}

// IndexEntry maps one facet value to the meetings that carry it.
type IndexEntry struct {
	// Key is the filterable value ("Monday", "O", "Midtown", "5").
	Key string `json:"key"`

	// Name is the display label for Key ("Open" for "O", "within 5 mi"
	// for "5"). Equal to Key when no friendlier label is known.
	Name string `json:"name"`

	// Slugs lists matching meetings in data-set load order, no duplicates.
	Slugs []string `json:"slugs"`
}

// Indexes holds the per-facet lookup tables, entries in display order.
// All facets except distance are built once per data load; the distance
// facet is rebuilt from scratch whenever the reference point changes.
type Indexes struct {
	Weekday  []IndexEntry `json:"weekday"`
	Time     []IndexEntry `json:"time"`
	Type     []IndexEntry `json:"type"`
	Region   []IndexEntry `json:"region"`
	Distance []IndexEntry `json:"distance"`
}

// Facet returns the entries for the named facet, or nil for an unknown name.
func (ix Indexes) Facet(name string) []IndexEntry {
	switch name {
	case FacetWeekday:
		return ix.Weekday
	case FacetTime:
		return ix.Time
	case FacetType:
		return ix.Type
	case FacetRegion:
		return ix.Region
	case FacetDistance:
		return ix.Distance
	default:
		return nil
	}
}

// Lookup returns the slugs filed under key in the named facet. A value
// absent from the index returns nil, which an evaluator treats as an empty
// match set: stale selections degrade to no results, never an error.
func (ix Indexes) Lookup(facet, key string) []string {
	for _, e := range ix.Facet(facet) {
		if e.Key == key {
			return e.Slugs
		}
	}
	return nil
}
