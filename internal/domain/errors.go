package domain

import "errors"

// ErrNoData is returned when no source URL is configured or the source
// resolves to an empty document. Handlers should map this to HTTP 503
// with error code "no_data".
var ErrNoData = errors.New("no data")

// ErrBadData is returned when the source is unreachable, is not valid
// JSON, or is not row-shaped (e.g. a JSON object where an array of rows
// was expected). The load is never partially repaired: the whole data
// set is rejected. Handlers should map this to HTTP 503 with error code
// "bad_data".
var ErrBadData = errors.New("bad data")

// ErrNotFound is returned when a slug does not identify any loaded
// meeting. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when query input fails validation (e.g. an
// unknown search mode, or a latitude outside [-90, 90]). Handlers should
// map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
