package domain

// Search modes. In search mode free text matches against record content;
// in location mode the text is a place name the client geocodes into a
// reference point; in me mode the reference point comes from device
// geolocation. Only search mode text-matches.
const (
	ModeSearch   = "search"
	ModeLocation = "location"
	ModeMe       = "me"
)

// FilterInput is one complete filter query: the current selection per
// facet, the free-text search, the search mode, and the optional single
// meeting slug. It is a value type; update operations return a modified
// copy, callers never edit shared state in place.
type FilterInput struct {
	// Per-facet selections. Within a facet the values are OR'd; across
	// facets the results are AND'd. Nil and empty both mean "facet
	// unused".
	Weekday  []string `json:"weekday,omitempty"`
	Time     []string `json:"time,omitempty"`
	Type     []string `json:"type,omitempty"`
	Region   []string `json:"region,omitempty"`
	Distance []string `json:"distance,omitempty"`

	// Search is the free text. Only consulted when Mode is ModeSearch.
	Search string `json:"search,omitempty"`

	// Mode is one of ModeSearch, ModeLocation, ModeMe. Zero value means
	// ModeSearch.
	Mode string `json:"mode,omitempty"`

	// Meeting selects a single record by slug (detail view), bypassing
	// all other filtering.
	Meeting string `json:"meeting,omitempty"`

	// Latitude/Longitude form the reference point for distance
	// computation in location/me modes. Both nil when no point is set.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Selection returns the selected values for the named facet.
func (in FilterInput) Selection(facet string) []string {
	switch facet {
	case FacetWeekday:
		return in.Weekday
	case FacetTime:
		return in.Time
	case FacetType:
		return in.Type
	case FacetRegion:
		return in.Region
	case FacetDistance:
		return in.Distance
	default:
		return nil
	}
}

// EffectiveMode normalizes the zero value to ModeSearch.
func (in FilterInput) EffectiveMode() string {
	if in.Mode == "" {
		return ModeSearch
	}
	return in.Mode
}

// ReferencePoint returns the reference coordinates and whether both are set.
func (in FilterInput) ReferencePoint() (lat, lng float64, ok bool) {
	if in.Latitude == nil || in.Longitude == nil {
		return 0, 0, false
	}
	return *in.Latitude, *in.Longitude, true
}

// WithMode returns a copy switched to mode with all distance state cleared:
// changing mode invalidates the reference point, so any distance selection
// or coordinates from the previous mode must not leak into the next query.
func (in FilterInput) WithMode(mode string) FilterInput {
	out := in
	out.Mode = mode
	out.Search = ""
	out.Distance = nil
	out.Latitude = nil
	out.Longitude = nil
	return out
}

// WithSearch returns a copy with the free text replaced.
func (in FilterInput) WithSearch(search string) FilterInput {
	out := in
	out.Search = search
	return out
}

// WithSelection returns a copy with the named facet's selection replaced.
// Unknown facet names return the input unchanged.
func (in FilterInput) WithSelection(facet string, values []string) FilterInput {
	out := in
	switch facet {
	case FacetWeekday:
		out.Weekday = values
	case FacetTime:
		out.Time = values
	case FacetType:
		out.Type = values
	case FacetRegion:
		out.Region = values
	case FacetDistance:
		out.Distance = values
	}
	return out
}
