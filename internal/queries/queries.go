package queries

import (
	"context"

	"github.com/desertthunder/tempo/internal/services"
)

// Gate holds the preconditions for issuing a fetch.
//
// The underlying HTTP call fires if and only if a token is present, the query
// is enabled, and session resolution has completed. This is a hard
// precondition checked before the cache is touched, not a best-effort filter.
type Gate struct {
	Token     string
	Enabled   bool
	Resolving bool
}

// Open reports whether a fetch may be attempted.
func (g Gate) Open() bool {
	return g.Token != "" && g.Enabled && !g.Resolving
}

// TopItemsQuery is the cached, parameterized fetch of the user's top statistics.
type TopItemsQuery struct {
	svc   services.StatsService
	cache *Cache
}

// NewTopItemsQuery creates a TopItemsQuery over the given service and cache.
func NewTopItemsQuery(svc services.StatsService, cache *Cache) *TopItemsQuery {
	return &TopItemsQuery{svc: svc, cache: cache}
}

// Fetch returns the top items for the gate's token and the given parameters.
//
// A closed gate yields a Pending result without any call being attempted.
// Two fetches with an identical (token, type, limit, offset, time_range)
// tuple within the freshness window share one cache entry; any difference in
// the tuple is a distinct entry.
func (q *TopItemsQuery) Fetch(ctx context.Context, gate Gate, params services.TopItemsParams) Result[*services.TopItems] {
	if !gate.Open() {
		return Result[*services.TopItems]{Status: Pending}
	}

	key := Key("topItems", gate.Token, params.Key())
	return run(ctx, q.cache, key, func(ctx context.Context) (*services.TopItems, error) {
		return q.svc.TopItems(ctx, gate.Token, params)
	})
}

// Key returns the cache key a fetch with these inputs would use.
func (q *TopItemsQuery) Key(gate Gate, params services.TopItemsParams) string {
	return Key("topItems", gate.Token, params.Key())
}

// ProfileQuery is the cached fetch of the current user's profile.
type ProfileQuery struct {
	svc   services.StatsService
	cache *Cache
}

// NewProfileQuery creates a ProfileQuery over the given service and cache.
func NewProfileQuery(svc services.StatsService, cache *Cache) *ProfileQuery {
	return &ProfileQuery{svc: svc, cache: cache}
}

// Fetch returns the current user's profile, gated identically to [TopItemsQuery.Fetch].
func (q *ProfileQuery) Fetch(ctx context.Context, gate Gate) Result[*services.User] {
	if !gate.Open() {
		return Result[*services.User]{Status: Pending}
	}

	key := Key("currentUser", gate.Token)
	return run(ctx, q.cache, key, func(ctx context.Context) (*services.User, error) {
		return q.svc.Me(ctx, gate.Token)
	})
}
