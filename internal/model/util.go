package model

import "github.com/google/uuid"

// newID returns a random identifier for a new row
func newID() string {
	return uuid.NewString()
}
