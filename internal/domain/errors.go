package domain

import "errors"

// ErrNotFound is returned by stores when a user or product lookup misses.
var ErrNotFound = errors.New("not found")
