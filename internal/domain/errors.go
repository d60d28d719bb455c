package domain

import "errors"

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("domain: not found")

// ErrPendingChangeExists is returned when a caller already holds an
// unresolved pending change and attempts to create another one.
var ErrPendingChangeExists = errors.New("domain: pending change exists")
