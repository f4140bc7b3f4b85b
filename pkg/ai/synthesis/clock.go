package synthesis

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies timestamps to the orchestrator
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies synthesis identifiers
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// SystemClock returns a Clock backed by time.Now in UTC
func SystemClock() Clock { return systemClock{} }

// UUIDGenerator returns an IDGenerator producing random UUIDs
func UUIDGenerator() IDGenerator { return uuidGenerator{} }
