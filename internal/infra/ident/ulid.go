package ident

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Clock interface {
	Now() time.Time
}

// ULIDGenerator issues sortable run ids. Ids minted within the same
// millisecond still sort in issue order.
type ULIDGenerator struct {
	clock   Clock
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator(clock Clock) *ULIDGenerator {
	return &ULIDGenerator{clock: clock, entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) NewID() (string, error) {
	now := time.Now()
	if g.clock != nil {
		now = g.clock.Now()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}

// IssuedAt returns the timestamp encoded in a run id.
func IssuedAt(id string) (time.Time, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run id: %w", err)
	}
	return ulid.Time(parsed.Time()).UTC(), nil
}
