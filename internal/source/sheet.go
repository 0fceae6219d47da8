package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meetingguide/backend/internal/domain"
)

// knownColumns are the RawRow field names the normalizer understands.
// Sheet headers are folded (trimmed, lowercased, spaces to underscores)
// and matched against this set; anything else is dropped without error,
// since an unknown column has no display contract anyway.
var knownColumns = map[string]bool{
	"slug":                   true,
	"name":                   true,
	"day":                    true,
	"time":                   true,
	"end_time":               true,
	"timezone":               true,
	"types":                  true,
	"region":                 true,
	"regions":                true,
	"sub_region":             true,
	"location":               true,
	"location_notes":         true,
	"formatted_address":      true,
	"address":                true,
	"city":                   true,
	"state":                  true,
	"postal_code":            true,
	"country":                true,
	"latitude":               true,
	"longitude":              true,
	"approximate":            true,
	"attendance_option":      true,
	"notes":                  true,
	"group":                  true,
	"group_notes":            true,
	"district":               true,
	"email":                  true,
	"phone":                  true,
	"website":                true,
	"venmo":                  true,
	"square":                 true,
	"paypal":                 true,
	"conference_url":         true,
	"conference_url_notes":   true,
	"conference_phone":       true,
	"conference_phone_notes": true,
	"conference_provider":    true,
	"updated":                true,
}

// sheetPayload is the Google Sheets values export shape: a header row
// followed by data rows.
type sheetPayload struct {
	Values [][]any `json:"values"`
}

// TranslateGoogleSheet reshapes a Sheet values export into RawRows.
// The first row is the header; each later row becomes one RawRow with
// recognized columns only. Rows shorter than the header are padded with
// absence (the column is simply not set); entirely empty rows are skipped.
func TranslateGoogleSheet(body []byte) ([]RawRow, error) {
	var payload sheetPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("not a sheet export: %w", domain.ErrBadData)
	}
	if len(payload.Values) == 0 {
		return nil, fmt.Errorf("sheet export has no header row: %w", domain.ErrBadData)
	}

	headers := make([]string, len(payload.Values[0]))
	for i, cell := range payload.Values[0] {
		headers[i] = foldHeader(fmt.Sprint(cell))
	}

	rows := make([]RawRow, 0, len(payload.Values)-1)
	for _, cells := range payload.Values[1:] {
		row := RawRow{}
		for i, cell := range cells {
			if i >= len(headers) {
				break
			}
			col := headers[i]
			if !knownColumns[col] {
				continue
			}
			if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			row[col] = cell
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// foldHeader canonicalizes a sheet header cell to a RawRow column name:
// "Conference URL " -> "conference_url".
func foldHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}
