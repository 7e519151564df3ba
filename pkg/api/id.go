package api

import "github.com/google/uuid"

// NewID returns a random UUIDv4 string used for every stored row.
func NewID() string {
	return uuid.NewString()
}
