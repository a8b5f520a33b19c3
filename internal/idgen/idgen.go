// Package idgen mints the opaque ids the hub assigns to agents and
// streams, backed by google/uuid the way the teacher mints session and
// request ids.
package idgen

import "github.com/google/uuid"

// New returns a fresh random id string.
func New() string {
	return uuid.New().String()
}
