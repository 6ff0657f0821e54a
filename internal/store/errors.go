// Package store persists entries, sessions and weekly images, either in
// Postgres or in process memory.
package store

import "errors"

var ErrNotFound = errors.New("not found")
