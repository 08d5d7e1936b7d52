package application

import (
	"sync"
	"time"
)

// IntegrityWarning records an observed inconsistency between persisted
// records, such as a reserved room whose occupant ids resolve to fewer user
// records than the room lists. Readers keep working when they observe one;
// the warning is retained here for the admin surface instead.
type IntegrityWarning struct {
	Kind       string
	DormID     string
	RoomID     string
	UserID     string
	Detail     string
	ObservedAt time.Time
}

// Warning kinds recorded by the services.
const (
	WarningMissingOccupant = "missing_occupant"
	WarningMissingRoommate = "missing_roommate"
	WarningDanglingRoomRef = "dangling_room_ref"
)

// WarningCache keeps recent integrity warnings in memory with a TTL so the
// admin surface can report them without a persistent audit table.
type WarningCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	warnings   []warningEntry
}

type warningEntry struct {
	warning   IntegrityWarning
	expiresAt time.Time
}

// NewWarningCache constructs a cache with the given retention. Zero values
// fall back to a 15 minute TTL and 256 entries.
func NewWarningCache(ttl time.Duration, maxEntries int, now func() time.Time) *WarningCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &WarningCache{now: now, ttl: ttl, maxEntries: maxEntries}
}

// Record stores a warning, evicting the oldest entry when full.
func (c *WarningCache) Record(warning IntegrityWarning) {
	if c == nil {
		return
	}
	if warning.ObservedAt.IsZero() {
		warning.ObservedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()
	if len(c.warnings) >= c.maxEntries {
		c.warnings = c.warnings[1:]
	}
	c.warnings = append(c.warnings, warningEntry{
		warning:   warning,
		expiresAt: c.now().Add(c.ttl),
	})
}

// List returns the warnings that have not expired, oldest first.
func (c *WarningCache) List() []IntegrityWarning {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()
	out := make([]IntegrityWarning, len(c.warnings))
	for i, entry := range c.warnings {
		out[i] = entry.warning
	}
	return out
}

// Clear drops every retained warning.
func (c *WarningCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.warnings = nil
	c.mu.Unlock()
}

func (c *WarningCache) pruneLocked() {
	now := c.now()
	kept := c.warnings[:0]
	for _, entry := range c.warnings {
		if now.Before(entry.expiresAt) {
			kept = append(kept, entry)
		}
	}
	c.warnings = kept
}
