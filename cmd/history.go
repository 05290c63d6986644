package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/tempo/internal/repositories"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList displays recorded snapshots, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("type")
	timeRange := cmd.String("time-range")
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSnapshotRepository(db)

	criteria := map[string]any{}
	if kind != "" {
		criteria["kind"] = kind
	}
	if timeRange != "" {
		criteria["time_range"] = timeRange
	}

	snapshots, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		rows := make([]map[string]any, 0, len(snapshots))
		for _, s := range snapshots {
			rows = append(rows, map[string]any{
				"id":         s.ID(),
				"kind":       s.Kind(),
				"time_range": s.TimeRange(),
				"item_count": s.ItemCount(),
				"top_genre":  s.TopGenre(),
				"fetched_at": s.FetchedAt(),
			})
		}
		return r.writeJSON(rows, true)
	}

	if len(snapshots) == 0 {
		return r.writePlain("No snapshots recorded. Run 'tempo stats fetch' first.\n")
	}

	r.writePlain("Found %d snapshots:\n\n", len(snapshots))
	for i, s := range snapshots {
		r.writePlain("%d. [%s] %s / %s — %d items\n", i+1, s.FetchedAt().Format("2006-01-02 15:04"), s.Kind(), s.TimeRange(), s.ItemCount())
		if s.TopGenre() != "" {
			r.writePlain("   Top genre: %s\n", s.TopGenre())
		}
		r.writePlain("   ID: %s\n", s.ID())
	}

	return nil
}

// HistoryShow re-renders one recorded snapshot from its stored payload.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	useJSON := cmd.Bool("json")

	if id == "" {
		return fmt.Errorf("%w: snapshot ID is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := repositories.NewSnapshotRepository(db).Get(id)
	if err != nil {
		return err
	}

	var items services.TopItems
	if err := json.Unmarshal([]byte(snapshot.Payload()), &items); err != nil {
		return fmt.Errorf("%w: snapshot payload: %v", shared.ErrMalformedResponse, err)
	}

	if useJSON {
		return r.writeJSON(items, true)
	}

	r.writePlainHeader(fmt.Sprintf("Snapshot %s (%s / %s)", snapshot.ID(), snapshot.Kind(), snapshot.TimeRange()))
	r.writePlain("Fetched: %s\n\n", snapshot.FetchedAt().Format("2006-01-02 15:04"))

	if items.TopArtists != nil {
		for i, artist := range items.TopArtists.Items {
			r.writePlain("%d. %s\n", i+1, artist.Name)
		}
	}
	if items.TopTracks != nil {
		for i, track := range items.TopTracks.Items {
			r.writePlain("%d. %s - %s\n", i+1, services.ArtistLine(track), track.Name)
		}
	}

	return nil
}

// HistoryClear soft-deletes snapshots, one by ID or all of them.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSnapshotRepository(db)

	if id != "" {
		if err := repo.Delete(id); err != nil {
			return err
		}
		r.logger.Info("snapshot deleted", "id", id)
		return r.writePlain("✓ Snapshot %s deleted\n", id)
	}

	snapshots, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	deleted := 0
	for _, s := range snapshots {
		if err := repo.Delete(s.ID()); err != nil {
			r.logger.Warn("failed to delete snapshot", "id", s.ID(), "error", err)
			continue
		}
		deleted++
	}

	r.logger.Info("history cleared", "deleted", deleted)
	return r.writePlain("✓ Deleted %d snapshots\n", deleted)
}
