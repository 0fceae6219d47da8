package domain

// Capabilities records which facets and features the loaded data set can
// support, computed in one pass over all records at load time (logical OR:
// one record with coordinates is enough to light up the coordinates
// capability). It drives which controls a client offers, and it is a
// correctness gate: a facet whose capability is false is inert, so stray
// selections on it never affect filtering.
type Capabilities struct {
	// Coordinates is true when any record has a validated lat/lng pair.
	Coordinates bool `json:"coordinates"`

	// Weekday, Time, Type, Region are true when any record carries a value
	// for the corresponding facet.
	Weekday bool `json:"weekday"`
	Time    bool `json:"time"`
	Type    bool `json:"type"`
	Region  bool `json:"region"`

	// Distance is true only while a reference point is in play; it implies
	// Coordinates.
	Distance bool `json:"distance"`

	// Geolocation is true when the deployment allows "near me" mode
	// (requires Coordinates; the device side is the client's concern).
	Geolocation bool `json:"geolocation"`
}

// Enabled reports whether the named facet may participate in filtering.
// Unknown facet names are never enabled.
func (c Capabilities) Enabled(facet string) bool {
	switch facet {
	case FacetWeekday:
		return c.Weekday
	case FacetTime:
		return c.Time
	case FacetType:
		return c.Type
	case FacetRegion:
		return c.Region
	case FacetDistance:
		return c.Distance
	default:
		return false
	}
}
