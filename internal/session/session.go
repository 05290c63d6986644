// package session implements the client-side credential lifecycle.
//
// A [Credential] is acquired from a login redirect, persisted in a single
// storage [Slot], expired client-side after a fixed window, and exposed to the
// rest of the application through a [Controller].
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL is the client-side credential lifetime.
//
// The backend's own token lifetime is assumed to be at least this long; a
// rejected token is handled separately via log-out on fetch failure.
const DefaultTTL = time.Hour

// Credential is the persisted authentication record.
type Credential struct {
	Token      string    `json:"token"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Valid reports whether the credential has a non-empty token and a well-defined acquisition time.
func (c Credential) Valid() bool {
	return c.Token != "" && !c.AcquiredAt.IsZero()
}

// Expired reports whether the credential's age exceeds ttl at the given instant.
func (c Credential) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.AcquiredAt) > ttl
}

// Slot is a single named record in client-local persistent storage.
//
// Implementations include the file slot in this package, the SQLite-backed
// slot in internal/repositories, and in-memory fakes for tests.
type Slot interface {
	Read() ([]byte, error)  // Read returns the raw record, or (nil, nil) when the slot is empty
	Write([]byte) error     // Write overwrites the slot atomically
	Clear() error           // Clear empties the slot; clearing an empty slot is a no-op
}

// Store owns the persisted [Credential] exclusively and enforces the expiry policy.
type Store struct {
	slot Slot
	ttl  time.Duration
	now  func() time.Time
}

// NewStore creates a Store over the given slot. A non-positive ttl falls back to [DefaultTTL].
func NewStore(slot Slot, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{slot: slot, ttl: ttl, now: time.Now}
}

// Read returns the persisted credential, or nil when the slot is empty.
//
// Malformed records and storage faults are treated as an absent session rather
// than surfaced; an expired credential is evicted from the slot before nil is
// returned, so callers never observe a stale token.
func (s *Store) Read() *Credential {
	data, err := s.slot.Read()
	if err != nil || len(data) == 0 {
		return nil
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil || !cred.Valid() {
		return nil
	}

	if cred.Expired(s.now(), s.ttl) {
		_ = s.slot.Clear()
		return nil
	}

	return &cred
}

// Write persists the credential, overwriting any existing record.
func (s *Store) Write(cred Credential) error {
	if !cred.Valid() {
		return fmt.Errorf("refusing to persist invalid credential")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err := s.slot.Write(data); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	return nil
}

// Clear empties the credential slot. Idempotent.
func (s *Store) Clear() error {
	return s.slot.Clear()
}

// TTL returns the store's expiry window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
