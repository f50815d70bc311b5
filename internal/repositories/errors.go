package repositories

import "errors"

// ErrNotFound is returned by every repository when the requested record does
// not exist. Callers match it with errors.Is and translate it to their own
// domain error.
var ErrNotFound = errors.New("record not found")
