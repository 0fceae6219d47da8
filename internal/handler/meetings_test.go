package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingguide/backend/internal/domain"
	"github.com/meetingguide/backend/internal/handler"
)

// ---- mock DirectoryServicer -------------------------------------------------

type mockDirectoryServicer struct {
	filter       func(ctx context.Context, in domain.FilterInput) (domain.FilterResult, error)
	meeting      func(ctx context.Context, slug string) (domain.Meeting, error)
	capabilities func(ctx context.Context) (domain.Capabilities, error)
	indexes      func(ctx context.Context) (domain.Indexes, error)
}

func (m *mockDirectoryServicer) Filter(ctx context.Context, in domain.FilterInput) (domain.FilterResult, error) {
	return m.filter(ctx, in)
}
func (m *mockDirectoryServicer) Meeting(ctx context.Context, slug string) (domain.Meeting, error) {
	return m.meeting(ctx, slug)
}
func (m *mockDirectoryServicer) Capabilities(ctx context.Context) (domain.Capabilities, error) {
	return m.capabilities(ctx)
}
func (m *mockDirectoryServicer) Indexes(ctx context.Context) (domain.Indexes, error) {
	return m.indexes(ctx)
}

// compile-time check: mockDirectoryServicer must satisfy handler.DirectoryServicer.
var _ handler.DirectoryServicer = (*mockDirectoryServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func newHTTPHandler(dir handler.DirectoryServicer) http.Handler {
	return handler.NewServer(dir, nil).Routes()
}

func meetingFixture(slug string) domain.Meeting {
	return domain.Meeting{
		Slug:    slug,
		Name:    "Open Group",
		Types:   []string{"O"},
		Regions: []string{"Midtown"},
	}
}

func emptyResult() domain.FilterResult {
	return domain.FilterResult{Slugs: []string{}, Meetings: []domain.Meeting{}, Active: map[string]bool{}}
}

// ---- GET /meetings ---------------------------------------------------------

func TestListMeetings_200(t *testing.T) {
	m := meetingFixture("open-group")
	dir := &mockDirectoryServicer{
		filter: func(_ context.Context, in domain.FilterInput) (domain.FilterResult, error) {
			return domain.FilterResult{
				Slugs:     []string{m.Slug},
				Meetings:  []domain.Meeting{m},
				Active:    map[string]bool{m.Slug: true},
				Distances: map[string]float64{m.Slug: 1.25},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Meetings []struct {
			Slug     string   `json:"slug"`
			Active   bool     `json:"active"`
			Distance *float64 `json:"distance"`
		} `json:"meetings"`
		Slugs []string `json:"slugs"`
		Alert *string  `json:"alert"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Meetings, 1)
	assert.Equal(t, "open-group", body.Meetings[0].Slug)
	assert.True(t, body.Meetings[0].Active)
	require.NotNil(t, body.Meetings[0].Distance)
	assert.Equal(t, 1.25, *body.Meetings[0].Distance)
	assert.Nil(t, body.Alert)
}

// Query parameters decode into the FilterInput contract: repeated and
// comma-separated facet values both work, coordinates parse as floats.
func TestListMeetings_QueryDecoding(t *testing.T) {
	var captured domain.FilterInput
	dir := &mockDirectoryServicer{
		filter: func(_ context.Context, in domain.FilterInput) (domain.FilterResult, error) {
			captured = in
			return emptyResult(), nil
		},
	}

	target := "/meetings?type=O,M&type=X&weekday=Monday&time=evening&region=Midtown" +
		"&distance=5&search=foo&mode=location&latitude=40.75&longitude=-73.98"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"O", "M", "X"}, captured.Type)
	assert.Equal(t, []string{"Monday"}, captured.Weekday)
	assert.Equal(t, []string{"evening"}, captured.Time)
	assert.Equal(t, []string{"Midtown"}, captured.Region)
	assert.Equal(t, []string{"5"}, captured.Distance)
	assert.Equal(t, "foo", captured.Search)
	assert.Equal(t, domain.ModeLocation, captured.Mode)
	require.NotNil(t, captured.Latitude)
	assert.Equal(t, 40.75, *captured.Latitude)
	require.NotNil(t, captured.Longitude)
	assert.Equal(t, -73.98, *captured.Longitude)
}

func TestListMeetings_AlertPassedThrough(t *testing.T) {
	dir := &mockDirectoryServicer{
		filter: func(_ context.Context, _ domain.FilterInput) (domain.FilterResult, error) {
			r := emptyResult()
			r.Alert = domain.AlertNoResults
			return r, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/meetings?search=nothing", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alert *string `json:"alert"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Alert)
	assert.Equal(t, domain.AlertNoResults, *body.Alert)
}

func TestListMeetings_422_BadCoordinate(t *testing.T) {
	dir := &mockDirectoryServicer{}

	req := httptest.NewRequest(http.MethodGet, "/meetings?latitude=abc&longitude=-73", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assertErrorCode(t, rec, "validation_error")
}

func TestListMeetings_422_HalfReferencePoint(t *testing.T) {
	dir := &mockDirectoryServicer{}

	req := httptest.NewRequest(http.MethodGet, "/meetings?latitude=40.75", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListMeetings_503_LoadErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"no data", domain.ErrNoData, "no_data"},
		{"bad data", domain.ErrBadData, "bad_data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := &mockDirectoryServicer{
				filter: func(_ context.Context, _ domain.FilterInput) (domain.FilterResult, error) {
					return domain.FilterResult{}, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
			rec := httptest.NewRecorder()
			newHTTPHandler(dir).ServeHTTP(rec, req)

			require.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assertErrorCode(t, rec, tc.code)
		})
	}
}

// ---- GET /meetings/{slug} --------------------------------------------------

func TestGetMeeting_200(t *testing.T) {
	dir := &mockDirectoryServicer{
		meeting: func(_ context.Context, slug string) (domain.Meeting, error) {
			assert.Equal(t, "open-group", slug)
			return meetingFixture(slug), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/meetings/open-group", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Meeting
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Open Group", body.Name)
}

func TestGetMeeting_404(t *testing.T) {
	dir := &mockDirectoryServicer{
		meeting: func(_ context.Context, _ string) (domain.Meeting, error) {
			return domain.Meeting{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/meetings/missing", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assertErrorCode(t, rec, "not_found")
}

// ---- GET /capabilities and /indexes -----------------------------------------

func TestGetCapabilities_200(t *testing.T) {
	dir := &mockDirectoryServicer{
		capabilities: func(_ context.Context) (domain.Capabilities, error) {
			return domain.Capabilities{Coordinates: true, Type: true}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/capabilities", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Capabilities
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Coordinates)
	assert.True(t, body.Type)
	assert.False(t, body.Region)
}

func TestGetIndexes_200(t *testing.T) {
	dir := &mockDirectoryServicer{
		indexes: func(_ context.Context) (domain.Indexes, error) {
			return domain.Indexes{
				Type: []domain.IndexEntry{{Key: "O", Name: "Open", Slugs: []string{"open-group"}}},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/indexes", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Indexes
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Type, 1)
	assert.Equal(t, "Open", body.Type[0].Name)
}

// ---- shared ----------------------------------------------------------------

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, code, body.Error.Code)
}
