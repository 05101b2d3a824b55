// Package repository defines the storage contracts of the ordering server
// and their MySQL implementation. The sentinel errors below are the only
// failure kinds higher layers need to tell apart.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate signals a unique constraint violation, such as a second
// account for the same email or a reused payment transaction id.
var ErrDuplicate = errors.New("duplicate record")

// ErrConflict is returned when a delete cannot proceed because other rows
// still reference the target, e.g. a catalog item that appears in orders.
// Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidReference is returned when a write points at a parent row
// that does not exist.
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrForbidden is returned when the caller acts on a resource owned by
// someone else. Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidFilter is returned for a filter on a column the repository
// does not expose.
var ErrInvalidFilter = errors.New("invalid filter column")
