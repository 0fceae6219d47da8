// Package source fetches the remote meeting data document and reshapes it
// into the row form the normalizer consumes. Two payload shapes are
// supported: a plain JSON array of row objects, and a Google Sheet values
// export, recognized by URL and translated first.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meetingguide/backend/internal/domain"
)

// RawRow is one source record before normalization: column name to value.
// Values are whatever the JSON decoder produced (string, float64, bool,
// []any); the normalizer owns all coercion.
type RawRow map[string]any

// Fetcher retrieves the meeting data document over HTTP.
// It performs a single fetch per call with no retries; a caller wanting
// retries wraps the call itself.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a bounded-timeout HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// IsGoogleSheet reports whether url points at a Google Sheet export, in
// which case the payload needs translation before normalization.
func IsGoogleSheet(url string) bool {
	return strings.Contains(url, "spreadsheets.google.com") ||
		strings.Contains(url, "sheets.googleapis.com")
}

// Fetch retrieves and decodes the document at url into rows.
// An empty url returns domain.ErrNoData. An unreachable source, a non-2xx
// response, invalid JSON, or a top-level shape that is not row-shaped all
// return domain.ErrBadData; the load is never partially repaired.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]RawRow, error) {
	if url == "" {
		return nil, fmt.Errorf("source.Fetcher.Fetch: no source url: %w", domain.ErrNoData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source.Fetcher.Fetch: %w: %w", domain.ErrBadData, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source.Fetcher.Fetch: %w: %w", domain.ErrBadData, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source.Fetcher.Fetch: %w: unexpected status %d", domain.ErrBadData, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source.Fetcher.Fetch: %w: %w", domain.ErrBadData, err)
	}

	return Decode(body, IsGoogleSheet(url))
}

// Decode parses a fetched payload into rows. When sheet is true the
// payload is treated as a Google Sheet values export and translated;
// otherwise it must be a JSON array of row objects.
func Decode(body []byte, sheet bool) ([]RawRow, error) {
	if sheet {
		rows, err := TranslateGoogleSheet(body)
		if err != nil {
			return nil, fmt.Errorf("source.Decode: %w", err)
		}
		return rows, nil
	}

	var rows []RawRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("source.Decode: not an array of rows: %w", domain.ErrBadData)
	}
	return rows, nil
}
