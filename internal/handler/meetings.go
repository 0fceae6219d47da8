package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meetingguide/backend/internal/domain"
)

// meetingItem is one meeting in a list response, the canonical record plus
// its query-dependent side values.
type meetingItem struct {
	domain.Meeting
	Distance *float64 `json:"distance,omitempty"`
	Active   bool     `json:"active"`
}

// listResponse is the body of GET /meetings.
type listResponse struct {
	Meetings []meetingItem `json:"meetings"`
	Slugs    []string      `json:"slugs"`
	Alert    *string       `json:"alert"`
}

// ListMeetings handles GET /meetings.
// Query parameters mirror the FilterInput field names: weekday, time,
// type, region, distance (repeatable or comma-separated), search, mode,
// meeting, latitude, longitude. The response preserves the evaluator's
// result order.
func (s *Server) ListMeetings(w http.ResponseWriter, r *http.Request) {
	in, err := filterInputFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.directory.Filter(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(result))
}

// GetMeeting handles GET /meetings/{slug}.
func (s *Server) GetMeeting(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	m, err := s.directory.Meeting(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// GetCapabilities handles GET /capabilities.
func (s *Server) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	c, err := s.directory.Capabilities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// GetIndexes handles GET /indexes. Clients build their facet dropdowns
// from this: every observed value per facet, in display order, with match
// counts derivable from the slug lists.
func (s *Server) GetIndexes(w http.ResponseWriter, r *http.Request) {
	ix, err := s.directory.Indexes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ix)
}

func toListResponse(result domain.FilterResult) listResponse {
	resp := listResponse{
		Meetings: make([]meetingItem, 0, len(result.Meetings)),
		Slugs:    result.Slugs,
	}
	if resp.Slugs == nil {
		resp.Slugs = []string{}
	}
	for _, m := range result.Meetings {
		item := meetingItem{Meeting: m, Active: result.Active[m.Slug]}
		if d, ok := result.Distances[m.Slug]; ok {
			dist := d
			item.Distance = &dist
		}
		resp.Meetings = append(resp.Meetings, item)
	}
	if result.Alert != "" {
		alert := result.Alert
		resp.Alert = &alert
	}
	return resp
}

// filterInputFromQuery decodes the query string into a FilterInput.
// Facet parameters accept both repeated keys and comma-separated values.
// Unparseable coordinates are a validation error rather than a silent
// no-reference-point, so a broken client notices.
func filterInputFromQuery(q url.Values) (domain.FilterInput, error) {
	in := domain.FilterInput{
		Weekday:  multi(q, domain.FacetWeekday),
		Time:     multi(q, domain.FacetTime),
		Type:     multi(q, domain.FacetType),
		Region:   multi(q, domain.FacetRegion),
		Distance: multi(q, domain.FacetDistance),
		Search:   q.Get("search"),
		Mode:     q.Get("mode"),
		Meeting:  q.Get("meeting"),
	}

	lat, err := coordinate(q, "latitude")
	if err != nil {
		return domain.FilterInput{}, err
	}
	lng, err := coordinate(q, "longitude")
	if err != nil {
		return domain.FilterInput{}, err
	}
	if (lat == nil) != (lng == nil) {
		return domain.FilterInput{}, fmt.Errorf("%w: latitude and longitude must be supplied together", domain.ErrValidation)
	}
	in.Latitude = lat
	in.Longitude = lng

	return in, nil
}

// multi collects q[key], splitting each value on commas and dropping
// empties.
func multi(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func coordinate(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, key)
	}
	return &v, nil
}
