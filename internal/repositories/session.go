package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tempo/internal/session"
)

// DefaultSlotName keys the single credential row in the sessions table.
const DefaultSlotName = "spotify"

// SessionRepository implements [session.Slot] over SQLite.
//
// The table holds at most one row per slot name; Read/Write/Clear are each
// single-statement operations, so no transaction spans them.
type SessionRepository struct {
	db   *sql.DB
	slot string
}

var _ session.Slot = (*SessionRepository)(nil)

// NewSessionRepository creates a SessionRepository using the default slot name.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, slot: DefaultSlotName}
}

// Read returns the stored credential record encoded as JSON, or (nil, nil)
// when the slot is empty.
func (r *SessionRepository) Read() ([]byte, error) {
	var (
		token      string
		acquiredAt time.Time
	)

	err := r.db.QueryRow("SELECT token, acquired_at FROM sessions WHERE slot = ?", r.slot).Scan(&token, &acquiredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	data, err := json.Marshal(session.Credential{Token: token, AcquiredAt: acquiredAt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	return data, nil
}

// Write replaces the slot's row with the given credential record.
func (r *SessionRepository) Write(data []byte) error {
	var cred session.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return fmt.Errorf("failed to decode credential: %w", err)
	}

	query := `
		INSERT INTO sessions (slot, token, acquired_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET token = excluded.token, acquired_at = excluded.acquired_at
	`

	if _, err := r.db.Exec(query, r.slot, cred.Token, cred.AcquiredAt); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

// Clear deletes the slot's row. Deleting a missing row is a no-op.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE slot = ?", r.slot); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
