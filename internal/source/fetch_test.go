package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingguide/backend/internal/domain"
	"github.com/meetingguide/backend/internal/source"
)

func TestFetch_JSONArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Morning Serenity","day":1},{"name":"Night Owls","day":"5"}]`))
	}))
	defer srv.Close()

	rows, err := source.NewFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Morning Serenity", rows[0]["name"])
	assert.Equal(t, "5", rows[1]["day"])
}

func TestFetch_EmptyURLIsNoData(t *testing.T) {
	_, err := source.NewFetcher().Fetch(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestFetch_UnreachableIsBadData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := source.NewFetcher().Fetch(context.Background(), srv.URL)

	assert.ErrorIs(t, err, domain.ErrBadData)
}

func TestFetch_Non200IsBadData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := source.NewFetcher().Fetch(context.Background(), srv.URL)

	assert.ErrorIs(t, err, domain.ErrBadData)
}

// A JSON object where an array of rows is expected is rejected whole,
// never partially rendered.
func TestFetch_ObjectPayloadIsBadData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meetings": []}`))
	}))
	defer srv.Close()

	_, err := source.NewFetcher().Fetch(context.Background(), srv.URL)

	assert.ErrorIs(t, err, domain.ErrBadData)
}

func TestFetch_EmptyArrayIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rows, err := source.NewFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIsGoogleSheet(t *testing.T) {
	assert.True(t, source.IsGoogleSheet("https://spreadsheets.google.com/feeds/list/abc/values?alt=json"))
	assert.True(t, source.IsGoogleSheet("https://sheets.googleapis.com/v4/spreadsheets/abc/values/A1:Z999?key=k"))
	assert.False(t, source.IsGoogleSheet("https://example.org/meetings.json"))
}
