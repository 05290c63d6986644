package models

import (
	"fmt"
	"time"
)

// Snapshot records one completed top-items fetch for the history command.
//
// The payload column keeps the raw JSON so past results can be re-rendered
// without another API call.
type Snapshot struct {
	id        string
	sequence  int
	kind      string // "artists" or "tracks"
	timeRange string
	itemCount int
	topGenre  string
	payload   string
	fetchedAt time.Time
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSnapshot creates a Snapshot for a fetch that completed at fetchedAt.
func NewSnapshot(sequence int, kind, timeRange string, itemCount int, topGenre, payload string, fetchedAt time.Time) *Snapshot {
	now := time.Now()
	return &Snapshot{
		sequence:  sequence,
		kind:      kind,
		timeRange: timeRange,
		itemCount: itemCount,
		topGenre:  topGenre,
		payload:   payload,
		fetchedAt: fetchedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Snapshot) ID() string           { return s.id }
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }
func (s *Snapshot) UpdatedAt() time.Time { return s.updatedAt }

func (s *Snapshot) Sequence() int        { return s.sequence }
func (s *Snapshot) Kind() string         { return s.kind }
func (s *Snapshot) TimeRange() string    { return s.timeRange }
func (s *Snapshot) ItemCount() int       { return s.itemCount }
func (s *Snapshot) TopGenre() string     { return s.topGenre }
func (s *Snapshot) Payload() string      { return s.payload }
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }
func (s *Snapshot) DeletedAt() *time.Time {
	return s.deletedAt
}

func (s *Snapshot) SetID(id string)             { s.id = id }
func (s *Snapshot) SetUpdatedAt(t time.Time)    { s.updatedAt = t }
func (s *Snapshot) SetDeletedAt(t *time.Time)   { s.deletedAt = t }
func (s *Snapshot) SetCreatedAt(t time.Time)    { s.createdAt = t }
func (s *Snapshot) SetSequence(seq int)         { s.sequence = seq }
func (s *Snapshot) SetFetchedAt(t time.Time)    { s.fetchedAt = t }

// Validate checks the snapshot's required fields.
func (s *Snapshot) Validate() error {
	if s.kind != "artists" && s.kind != "tracks" {
		return fmt.Errorf("invalid snapshot kind: %q", s.kind)
	}
	if s.timeRange == "" {
		return fmt.Errorf("snapshot time range is required")
	}
	if s.payload == "" {
		return fmt.Errorf("snapshot payload is required")
	}
	if s.fetchedAt.IsZero() {
		return fmt.Errorf("snapshot fetch time is required")
	}
	return nil
}
