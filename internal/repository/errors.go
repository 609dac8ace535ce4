// Package repository holds the storage backends behind console sessions and
// admin preferences. Every backend stores flat string entries; the
// settings and session packages own their meaning.
package repository

import "errors"

// ErrUnavailable is returned by backends whose connection is not
// configured. Callers fall back to the in-memory stores.
var ErrUnavailable = errors.New("storage unavailable")
