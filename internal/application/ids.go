package application

import "github.com/google/uuid"

// IDGenerator produces case identifiers. Implementations must be safe for
// concurrent use and hold no process-wide counters.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
