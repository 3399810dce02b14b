package repositories

import "errors"

// ErrNotFound is returned when a row or document does not exist. Callers that
// treat delete-of-missing as success-no-op test against this error.
var ErrNotFound = errors.New("not found")
