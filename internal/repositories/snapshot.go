package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
)

// SnapshotRepository implements models.Repository[*models.Snapshot] for fetch history.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new snapshot into the database with generated ID and sequence
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	sequence, err := NextSequence(r.db, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	snapshot.SetID(id)
	snapshot.SetSequence(sequence)

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO snapshots (
			id, sequence, kind, time_range, item_count, top_genre,
			payload, fetched_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var topGenre any = snapshot.TopGenre()
	if topGenre == "" {
		topGenre = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		snapshot.Kind(),
		snapshot.TimeRange(),
		snapshot.ItemCount(),
		topGenre,
		snapshot.Payload(),
		snapshot.FetchedAt(),
		snapshot.CreatedAt(),
		snapshot.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID, excluding soft-deleted records
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	query := `
		SELECT id, sequence, kind, time_range, item_count, top_genre,
		       payload, fetched_at, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE id = ? AND deleted_at IS NULL
	`

	row := r.db.QueryRow(query, id)
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	return snapshot, nil
}

// Update modifies an existing snapshot in the database
func (r *SnapshotRepository) Update(snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	snapshot.SetUpdatedAt(now)

	query := `
		UPDATE snapshots
		SET kind = ?, time_range = ?, item_count = ?, top_genre = ?, payload = ?, fetched_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		snapshot.Kind(), snapshot.TimeRange(), snapshot.ItemCount(), snapshot.TopGenre(),
		snapshot.Payload(), snapshot.FetchedAt(), now, snapshot.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", snapshot.ID())
	}

	return nil
}

// Delete soft-deletes a snapshot by ID
func (r *SnapshotRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE snapshots
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves snapshots matching the given criteria, newest first.
//
// Supported criteria keys: kind, time_range.
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.Snapshot, error) {
	query := `
		SELECT id, sequence, kind, time_range, item_count, top_genre,
		       payload, fetched_at, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if kind, ok := criteria["kind"]; ok {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	if timeRange, ok := criteria["time_range"]; ok {
		query += " AND time_range = ?"
		args = append(args, timeRange)
	}

	query += " ORDER BY fetched_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// scanner abstracts sql.Row and sql.Rows for scanSnapshot.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*models.Snapshot, error) {
	var (
		id        string
		sequence  int
		kind      string
		timeRange string
		itemCount int
		topGenre  sql.NullString
		payload   string
		fetchedAt time.Time
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &kind, &timeRange, &itemCount, &topGenre, &payload, &fetchedAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	snapshot := models.NewSnapshot(sequence, kind, timeRange, itemCount, topGenre.String, payload, fetchedAt)
	snapshot.SetID(id)
	snapshot.SetCreatedAt(createdAt)
	snapshot.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		snapshot.SetDeletedAt(&deletedAt.Time)
	}

	return snapshot, nil
}
