// package tasks implements dashboard load orchestration over the query layer.
//
// The core abstraction is [StatsEngine], which assembles the data a dashboard
// render needs (profile, top items, genre tallies) and fetches full paged
// listings. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/queries"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"golang.org/x/time/rate"
)

// GenreCount is one genre's weight across the user's top artists.
type GenreCount struct {
	Genre string
	Count int
}

// DashboardData contains everything the dashboard view renders.
type DashboardData struct {
	User   *services.User
	Top    *services.TopItems
	Genres []GenreCount
}

// SnapshotRecorder persists completed fetches for the history command.
// Implemented by repositories.SnapshotRepository.
type SnapshotRecorder interface {
	Create(snapshot *models.Snapshot) error
}

// StatsEngine orchestrates dashboard loads through the cached query layer.
type StatsEngine struct {
	top       *queries.TopItemsQuery
	profile   *queries.ProfileQuery
	limiter   *rate.Limiter
	snapshots SnapshotRecorder
}

// NewStatsEngine creates a StatsEngine. recorder may be nil (no history).
func NewStatsEngine(top *queries.TopItemsQuery, profile *queries.ProfileQuery, recorder SnapshotRecorder) *StatsEngine {
	return &StatsEngine{
		top:       top,
		profile:   profile,
		limiter:   rate.NewLimiter(rate.Limit(5), 1),
		snapshots: recorder,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *StatsEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// LoadDashboard fetches the profile and top items and tallies genres.
//
// The two fetches are independent and run concurrently; either failure fails
// the load. A closed gate fails fast without issuing any call.
func (e *StatsEngine) LoadDashboard(ctx context.Context, gate queries.Gate, progress chan<- ProgressUpdate) (*DashboardData, error) {
	if !gate.Open() {
		return nil, shared.ErrNotAuthenticated
	}

	e.sendProgress(progress, fetchProfileUpdate())

	var (
		wg         sync.WaitGroup
		userResult queries.Result[*services.User]
		topResult  queries.Result[*services.TopItems]
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		userResult = e.profile.Fetch(ctx, gate)
	}()
	go func() {
		defer wg.Done()
		e.sendProgress(progress, fetchTopUpdate())
		topResult = e.top.Fetch(ctx, gate, services.TopItemsParams{})
	}()
	wg.Wait()

	if userResult.Status == queries.Error {
		return nil, fmt.Errorf("failed to load profile: %w", userResult.Err)
	}
	if topResult.Status == queries.Error {
		return nil, fmt.Errorf("failed to load top items: %w", topResult.Err)
	}

	data := &DashboardData{User: userResult.Data, Top: topResult.Data}

	if data.Top != nil && data.Top.TopArtists != nil {
		e.sendProgress(progress, tallyGenresUpdate(len(data.Top.TopArtists.Items)))
		data.Genres = TallyGenres(data.Top.TopArtists.Items)
	}

	return data, nil
}

// FetchAll retrieves the full paged listing for one item type and time range.
//
// Pages of 50 are fetched sequentially under the engine's rate limiter until
// the backend reports no next page. The result is recorded as a snapshot when
// a recorder is configured.
func (e *StatsEngine) FetchAll(ctx context.Context, gate queries.Gate, itemType services.ItemType, timeRange services.TimeRange, progress chan<- ProgressUpdate) (*services.TopItems, error) {
	if !gate.Open() {
		return nil, shared.ErrNotAuthenticated
	}

	const pageSize = 50

	combined := &services.TopItems{}
	offset := 0

	for page := 1; ; page++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		e.sendProgress(progress, fetchPageUpdate(page, itemType))

		params := services.TopItemsParams{
			Type:      itemType,
			Limit:     pageSize,
			Offset:    offset,
			TimeRange: timeRange,
		}

		result := e.top.Fetch(ctx, gate, params)
		if result.Status == queries.Error {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, result.Err)
		}
		if result.Data == nil {
			break
		}

		next := mergePage(combined, result.Data)
		if !next {
			break
		}
		offset += pageSize
	}

	if e.snapshots != nil {
		if err := e.record(combined, itemType, timeRange); err != nil {
			return combined, fmt.Errorf("fetched but failed to record snapshot: %w", err)
		}
		e.sendProgress(progress, snapshotRecordedUpdate(itemType))
	}

	return combined, nil
}

// mergePage appends one page into the combined result and reports whether
// another page exists.
func mergePage(combined, page *services.TopItems) bool {
	more := false

	if page.TopArtists != nil {
		if combined.TopArtists == nil {
			combined.TopArtists = &services.TopItemsResponse[services.Artist]{
				Total: page.TopArtists.Total,
				Limit: page.TopArtists.Limit,
			}
		}
		combined.TopArtists.Items = append(combined.TopArtists.Items, page.TopArtists.Items...)
		if page.TopArtists.Next != nil && len(page.TopArtists.Items) > 0 {
			more = true
		}
	}

	if page.TopTracks != nil {
		if combined.TopTracks == nil {
			combined.TopTracks = &services.TopItemsResponse[services.Track]{
				Total: page.TopTracks.Total,
				Limit: page.TopTracks.Limit,
			}
		}
		combined.TopTracks.Items = append(combined.TopTracks.Items, page.TopTracks.Items...)
		if page.TopTracks.Next != nil && len(page.TopTracks.Items) > 0 {
			more = true
		}
	}

	return more
}

// record persists a snapshot of the combined fetch.
func (e *StatsEngine) record(items *services.TopItems, itemType services.ItemType, timeRange services.TimeRange) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot payload: %w", err)
	}

	count := 0
	topGenre := ""
	switch itemType {
	case services.ArtistItems:
		if items.TopArtists != nil {
			count = len(items.TopArtists.Items)
			if genres := TallyGenres(items.TopArtists.Items); len(genres) > 0 {
				topGenre = genres[0].Genre
			}
		}
	case services.TrackItems:
		if items.TopTracks != nil {
			count = len(items.TopTracks.Items)
		}
	}

	rangeName := string(timeRange)
	if rangeName == "" {
		rangeName = string(services.MediumTerm)
	}

	snapshot := models.NewSnapshot(0, string(itemType), rangeName, count, topGenre, string(payload), time.Now())
	return e.snapshots.Create(snapshot)
}

// TallyGenres counts genre occurrences across artists, most frequent first.
// Ties break alphabetically so output is stable.
func TallyGenres(artists []services.Artist) []GenreCount {
	counts := make(map[string]int)
	for _, artist := range artists {
		for _, genre := range artist.Genres {
			counts[genre]++
		}
	}

	tallies := make([]GenreCount, 0, len(counts))
	for genre, count := range counts {
		tallies = append(tallies, GenreCount{Genre: genre, Count: count})
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Count != tallies[j].Count {
			return tallies[i].Count > tallies[j].Count
		}
		return tallies[i].Genre < tallies[j].Genre
	})

	return tallies
}
