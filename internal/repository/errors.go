package repository

import "errors"

// ErrNotFound is returned when no matching non-deleted row exists in the
// tenant scope. Implementations wrap sql.ErrNoRows into it so callers never
// depend on driver errors.
var ErrNotFound = errors.New("not found")
