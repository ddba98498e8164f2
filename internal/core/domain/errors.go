package domain

import "errors"

// ErrNotFound is returned by repositories and lookups when a survey, mineral,
// or rock does not exist. Callers treat it as a normal outcome.
var ErrNotFound = errors.New("not found")
