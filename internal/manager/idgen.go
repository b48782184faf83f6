package manager

import "github.com/google/uuid"

// uuidGenerator is the production IDGenerator, backed by google/uuid.
type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}
