package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/tempo/internal/queries"
	"github.com/desertthunder/tempo/internal/repositories"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// topItemsParams assembles fetch parameters from command flags.
func topItemsParams(cmd *cli.Command) services.TopItemsParams {
	return services.TopItemsParams{
		Type:      services.ItemType(cmd.String("type")),
		Limit:     int(cmd.Int("limit")),
		Offset:    int(cmd.Int("offset")),
		TimeRange: services.TimeRange(cmd.String("time-range")),
	}
}

// resolveResult unwraps a query result, translating failure states.
//
// A Pending result here means the gate refused the fetch: there is no session.
// A rejected token discards the session before the error propagates.
func resolveResult[T any](r *Runner, result queries.Result[T]) (T, error) {
	var zero T

	switch result.Status {
	case queries.Pending:
		return zero, fmt.Errorf("%w: run 'tempo auth login'", shared.ErrNotAuthenticated)
	case queries.Error:
		if errors.Is(result.Err, shared.ErrTokenRejected) {
			r.logger.Warn("token rejected by proxy, discarding session")
			r.controller.LogOut()
			return zero, fmt.Errorf("%w: session discarded, run 'tempo auth login'", shared.ErrTokenRejected)
		}
		return zero, result.Err
	default:
		return result.Data, nil
	}
}

// StatsTop fetches and displays the user's top artists and/or tracks.
func (r *Runner) StatsTop(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	params := topItemsParams(cmd)
	if err := params.Validate(); err != nil {
		return err
	}

	r.logger.Info("fetching top items", "type", params.Type, "time_range", params.TimeRange)

	items, err := resolveResult(r, r.top.Fetch(ctx, r.gate(), params))
	if err != nil {
		return err
	}

	if save {
		saveFile := "top_items.json"
		data, err := shared.MarshalJSON(items, true)
		if err != nil {
			return fmt.Errorf("failed to marshal top items: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save top items", "error", err)
		} else {
			r.logger.Info("top items saved", "file", saveFile)
		}
	}

	if useJSON {
		return r.writeJSON(items, pretty)
	}

	if items.TopArtists != nil {
		r.writePlainHeader("Top Artists")
		for i, artist := range items.TopArtists.Items {
			r.writePlain("%d. %s\n", i+1, artist.Name)
			if len(artist.Genres) > 0 {
				r.writePlain("   Genres: %v\n", artist.Genres)
			}
		}
	}

	if items.TopTracks != nil {
		r.writePlainHeader("Top Tracks")
		for i, track := range items.TopTracks.Items {
			r.writePlain("%d. %s - %s [%s]\n", i+1, services.ArtistLine(track), track.Name, shared.FormatDuration(track.DurationMS))
		}
	}

	return nil
}

// StatsProfile fetches and displays the current user's profile.
func (r *Runner) StatsProfile(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("fetching profile")

	user, err := resolveResult(r, r.profile.Fetch(ctx, r.gate()))
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(user, pretty)
	}

	r.writePlain("Display name: %s\n", user.DisplayName)
	r.writePlain("ID: %s\n", user.ID)
	r.writePlain("Followers: %d\n", user.Followers.Total)
	if user.ExternalURLs.Spotify != "" {
		r.writePlain("Link: %s\n", user.ExternalURLs.Spotify)
	}

	return nil
}

// StatsFetch retrieves the complete paged listing for one item type and
// records it as a snapshot for the history command.
func (r *Runner) StatsFetch(ctx context.Context, cmd *cli.Command) error {
	itemType := services.ItemType(cmd.String("type"))
	timeRange := services.TimeRange(cmd.String("time-range"))
	useJSON := cmd.Bool("json")

	if itemType != services.ArtistItems && itemType != services.TrackItems {
		return fmt.Errorf("%w: type must be %q or %q", shared.ErrInvalidFlag, services.ArtistItems, services.TrackItems)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewStatsEngine(r.top, r.profile, repositories.NewSnapshotRepository(db))

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	items, err := engine.FetchAll(ctx, r.gate(), itemType, timeRange, progress)
	close(progress)
	<-done

	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return fmt.Errorf("%w: run 'tempo auth login'", shared.ErrNotAuthenticated)
		}
		if errors.Is(err, shared.ErrTokenRejected) {
			r.logger.Warn("token rejected by proxy, discarding session")
			r.controller.LogOut()
		}
		return err
	}

	if useJSON {
		return r.writeJSON(items, true)
	}

	count := 0
	switch itemType {
	case services.ArtistItems:
		if items.TopArtists != nil {
			count = len(items.TopArtists.Items)
		}
	case services.TrackItems:
		if items.TopTracks != nil {
			count = len(items.TopTracks.Items)
		}
	}

	r.writePlainln("✓ Fetched %d %s", count, itemType)
	r.writePlain("Snapshot recorded; see 'tempo history list'\n")
	return nil
}
