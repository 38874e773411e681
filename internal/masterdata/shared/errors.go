package shared

import "errors"

// ErrNotFound is the shared not-found sentinel for master data lookups.
var ErrNotFound = errors.New("resource not found")
