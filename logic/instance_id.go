package logic

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const maxIDAttempts = 8

// IDGenerator produces instance ids of the form
// <externalId>-<unix millis>-<random suffix>.
type IDGenerator struct {
	now     func() time.Time
	suffix  func() string
	counter atomic.Uint64
}

// NewIDGenerator returns a generator backed by the wall clock and uuid
// randomness.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		now:    time.Now,
		suffix: randomSuffix,
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Next returns an id for externalID that taken reports as free. Collisions are
// retried; if every attempt collides, a monotonic counter is appended, which
// cannot repeat within the generator's lifetime.
func (g *IDGenerator) Next(externalID string, taken func(string) bool) string {
	prefix := sanitizeIDPrefix(externalID)
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id = fmt.Sprintf("%s-%d-%s", prefix, g.now().UnixMilli(), g.suffix())
		if !taken(id) {
			return id
		}
	}
	for {
		candidate := fmt.Sprintf("%s-%d", id, g.counter.Add(1))
		if !taken(candidate) {
			return candidate
		}
	}
}

func sanitizeIDPrefix(externalID string) string {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return defaultIDPrefix
	}
	return strings.ReplaceAll(externalID, " ", "_")
}
