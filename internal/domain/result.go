package domain

// AlertNoResults is set when a loaded, non-empty data set matches nothing.
// An empty data set produces an empty result with no alert; the two cases
// render differently.
const AlertNoResults = "no_results"

// FilterResult is one evaluated query: the passing meetings in result
// order plus the query-dependent side tables. The side tables exist so
// Meeting stays immutable; distance and active-now change with the
// reference point and the clock, not with the data set.
type FilterResult struct {
	// Slugs is the ordered sequence of passing identifiers.
	Slugs []string `json:"slugs"`

	// Meetings carries the full records in the same order.
	Meetings []Meeting `json:"meetings"`

	// Distances maps slug to distance from the reference point in the
	// configured unit. Nil when no reference point is in play; a slug
	// absent from the map has no coordinates.
	Distances map[string]float64 `json:"distances,omitempty"`

	// Active maps slug to whether the meeting is in progress at
	// evaluation time. Computed for every result.
	Active map[string]bool `json:"active"`

	// Alert is AlertNoResults or empty.
	Alert string `json:"alert,omitempty"`
}
