package core

import "github.com/google/uuid"

// NewIdentifier returns a random identifier used to correlate log lines
// and cache entries.
func NewIdentifier() uuid.UUID {
	return uuid.New()
}

// ShortIdentifier returns the first block of id, for compact log output.
func ShortIdentifier(id uuid.UUID) string {
	return id.String()[:8]
}
