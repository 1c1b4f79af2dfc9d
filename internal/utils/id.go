package utils

import "github.com/google/uuid"

// NewID returns a fresh connection identifier. Identifiers are random v4
// UUIDs and are never reused during the life of the process.
func NewID() string {
	return uuid.NewString()
}
