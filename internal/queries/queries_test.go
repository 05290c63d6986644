package queries

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/tempo/internal/services"
	tu "github.com/desertthunder/tempo/internal/testing"
)

func TestGate(t *testing.T) {
	cases := []struct {
		name string
		gate Gate
		open bool
	}{
		{"all conditions met", Gate{Token: "tok", Enabled: true, Resolving: false}, true},
		{"missing token", Gate{Token: "", Enabled: true, Resolving: false}, false},
		{"disabled", Gate{Token: "tok", Enabled: false, Resolving: false}, false},
		{"still resolving", Gate{Token: "tok", Enabled: true, Resolving: true}, false},
		{"everything wrong", Gate{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.gate.Open(); got != tc.open {
				t.Errorf("Open() = %v, want %v", got, tc.open)
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Run("distinct tokens yield distinct keys", func(t *testing.T) {
		if Key("topItems", "tok_a") == Key("topItems", "tok_b") {
			t.Error("expected token to participate in the key")
		}
	})

	t.Run("every parameter participates", func(t *testing.T) {
		base := services.TopItemsParams{Type: services.ArtistItems, Limit: 20, Offset: 0, TimeRange: services.MediumTerm}
		variants := []services.TopItemsParams{
			{Type: services.TrackItems, Limit: 20, Offset: 0, TimeRange: services.MediumTerm},
			{Type: services.ArtistItems, Limit: 10, Offset: 0, TimeRange: services.MediumTerm},
			{Type: services.ArtistItems, Limit: 20, Offset: 20, TimeRange: services.MediumTerm},
			{Type: services.ArtistItems, Limit: 20, Offset: 0, TimeRange: services.ShortTerm},
		}

		baseKey := Key("topItems", "tok", base.Key())
		for _, v := range variants {
			if Key("topItems", "tok", v.Key()) == baseKey {
				t.Errorf("expected distinct key for params %+v", v)
			}
		}
	})

	t.Run("identical inputs yield identical keys", func(t *testing.T) {
		params := services.TopItemsParams{Type: services.ArtistItems, Limit: 20}
		if Key("topItems", "tok", params.Key()) != Key("topItems", "tok", params.Key()) {
			t.Error("expected key to be stable")
		}
	})
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh result is reused", func(t *testing.T) {
		cache := NewCache(time.Hour)
		var calls int32

		fetch := func(context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			return "value", nil
		}

		for i := 0; i < 3; i++ {
			data, err := cache.do(ctx, "k", fetch)
			if err != nil {
				t.Fatalf("do failed: %v", err)
			}
			if data != "value" {
				t.Errorf("unexpected data: %v", data)
			}
		}

		if calls != 1 {
			t.Errorf("expected one underlying call, got %d", calls)
		}
	})

	t.Run("stale result triggers a refetch", func(t *testing.T) {
		cache := NewCache(time.Hour)
		current := time.Now()
		cache.now = func() time.Time { return current }

		var calls int32
		fetch := func(context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			return calls, nil
		}

		if _, err := cache.do(ctx, "k", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}

		current = current.Add(61 * time.Minute)

		if _, err := cache.do(ctx, "k", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected refetch after expiry, got %d calls", calls)
		}
	})

	t.Run("errors are never cached", func(t *testing.T) {
		cache := NewCache(time.Hour)
		var calls int32
		boom := errors.New("boom")

		fetch := func(context.Context) (any, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, boom
			}
			return "recovered", nil
		}

		if _, err := cache.do(ctx, "k", fetch); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		data, err := cache.do(ctx, "k", fetch)
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if data != "recovered" {
			t.Errorf("unexpected data: %v", data)
		}
		if calls != 2 {
			t.Errorf("expected two calls, got %d", calls)
		}
	})

	t.Run("concurrent callers coalesce onto one fetch", func(t *testing.T) {
		cache := NewCache(time.Hour)
		var calls int32
		release := make(chan struct{})

		fetch := func(context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return "shared", nil
		}

		const waiters = 8
		var wg sync.WaitGroup
		results := make([]any, waiters)

		for i := 0; i < waiters; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				data, err := cache.do(ctx, "k", fetch)
				if err != nil {
					t.Errorf("waiter %d: %v", i, err)
					return
				}
				results[i] = data
			}(i)
		}

		// Give the waiters a moment to attach before the fetch settles.
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		if calls != 1 {
			t.Errorf("expected one underlying call, got %d", calls)
		}
		for i, data := range results {
			if data != "shared" {
				t.Errorf("waiter %d got %v", i, data)
			}
		}
	})

	t.Run("distinct keys do not coalesce", func(t *testing.T) {
		cache := NewCache(time.Hour)
		var calls int32

		fetch := func(context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			return "v", nil
		}

		if _, err := cache.do(ctx, "a", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}
		if _, err := cache.do(ctx, "b", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected two calls, got %d", calls)
		}
	})

	t.Run("cancelled waiter abandons the result", func(t *testing.T) {
		cache := NewCache(time.Hour)
		started := make(chan struct{})
		release := make(chan struct{})

		go func() {
			_, _ = cache.do(ctx, "k", func(context.Context) (any, error) {
				close(started)
				<-release
				return "late", nil
			})
		}()
		<-started

		waiterCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := cache.do(waiterCtx, "k", func(context.Context) (any, error) {
			t.Error("waiter must not issue its own fetch")
			return nil, nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}

		close(release)

		// The abandoned result still lands in the cache.
		data, err := cache.do(ctx, "k", func(context.Context) (any, error) {
			t.Error("settled entry must be reused")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("do failed: %v", err)
		}
		if data != "late" {
			t.Errorf("unexpected data: %v", data)
		}
	})

	t.Run("Invalidate drops a single entry", func(t *testing.T) {
		cache := NewCache(time.Hour)
		fetch := func(context.Context) (any, error) { return "v", nil }

		if _, err := cache.do(ctx, "a", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}
		if _, err := cache.do(ctx, "b", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}

		cache.Invalidate("a")
		if cache.Len() != 1 {
			t.Errorf("expected one entry, got %d", cache.Len())
		}
	})

	t.Run("Clear drops everything", func(t *testing.T) {
		cache := NewCache(time.Hour)
		fetch := func(context.Context) (any, error) { return "v", nil }

		if _, err := cache.do(ctx, "a", fetch); err != nil {
			t.Fatalf("do failed: %v", err)
		}

		cache.Clear()
		if cache.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", cache.Len())
		}
	})

	t.Run("FetchedAt reports settlement time", func(t *testing.T) {
		cache := NewCache(time.Hour)
		settled := time.Now()
		cache.now = func() time.Time { return settled }

		if _, ok := cache.FetchedAt("k"); ok {
			t.Error("expected no timestamp before any fetch")
		}

		if _, err := cache.do(ctx, "k", func(context.Context) (any, error) { return "v", nil }); err != nil {
			t.Fatalf("do failed: %v", err)
		}

		at, ok := cache.FetchedAt("k")
		if !ok || !at.Equal(settled) {
			t.Errorf("expected %v, got %v (%v)", settled, at, ok)
		}
	})
}

func TestTopItemsQuery(t *testing.T) {
	ctx := context.Background()
	openGate := Gate{Token: "tok_abc", Enabled: true}

	t.Run("closed gate yields pending without a call", func(t *testing.T) {
		svc := &tu.MockStatsService{}
		query := NewTopItemsQuery(svc, NewCache(time.Hour))

		result := query.Fetch(ctx, Gate{Enabled: true}, services.TopItemsParams{})
		if result.Status != Pending {
			t.Errorf("expected Pending, got %s", result.Status)
		}
		if svc.TopItemsCalls != 0 {
			t.Errorf("expected no service call, got %d", svc.TopItemsCalls)
		}
	})

	t.Run("open gate fetches and caches", func(t *testing.T) {
		svc := &tu.MockStatsService{
			TopItemsFunc: func(ctx context.Context, token string, params services.TopItemsParams) (*services.TopItems, error) {
				if token != "tok_abc" {
					t.Errorf("unexpected token %q", token)
				}
				return &services.TopItems{TopArtists: &services.TopItemsResponse[services.Artist]{Total: 7}}, nil
			},
		}
		query := NewTopItemsQuery(svc, NewCache(time.Hour))
		params := services.TopItemsParams{Type: services.ArtistItems, Limit: 20}

		for i := 0; i < 2; i++ {
			result := query.Fetch(ctx, openGate, params)
			if result.Status != Success {
				t.Fatalf("expected Success, got %s (%v)", result.Status, result.Err)
			}
			if result.Data.TopArtists.Total != 7 {
				t.Errorf("unexpected payload: %+v", result.Data)
			}
		}

		if svc.TopItemsCalls != 1 {
			t.Errorf("expected one service call, got %d", svc.TopItemsCalls)
		}
	})

	t.Run("parameter change misses the cache", func(t *testing.T) {
		svc := &tu.MockStatsService{}
		query := NewTopItemsQuery(svc, NewCache(time.Hour))

		query.Fetch(ctx, openGate, services.TopItemsParams{TimeRange: services.ShortTerm})
		query.Fetch(ctx, openGate, services.TopItemsParams{TimeRange: services.LongTerm})

		if svc.TopItemsCalls != 2 {
			t.Errorf("expected two service calls, got %d", svc.TopItemsCalls)
		}
	})

	t.Run("failure becomes an error result", func(t *testing.T) {
		boom := errors.New("backend down")
		svc := &tu.MockStatsService{
			TopItemsFunc: func(context.Context, string, services.TopItemsParams) (*services.TopItems, error) {
				return nil, boom
			},
		}
		query := NewTopItemsQuery(svc, NewCache(time.Hour))

		result := query.Fetch(ctx, openGate, services.TopItemsParams{})
		if result.Status != Error {
			t.Errorf("expected Error, got %s", result.Status)
		}
		if !errors.Is(result.Err, boom) {
			t.Errorf("expected boom, got %v", result.Err)
		}
	})
}

func TestProfileQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("closed gate yields pending", func(t *testing.T) {
		svc := &tu.MockStatsService{}
		query := NewProfileQuery(svc, NewCache(time.Hour))

		result := query.Fetch(ctx, Gate{})
		if result.Status != Pending {
			t.Errorf("expected Pending, got %s", result.Status)
		}
		if svc.MeCalls != 0 {
			t.Errorf("expected no service call, got %d", svc.MeCalls)
		}
	})

	t.Run("open gate returns the profile", func(t *testing.T) {
		svc := &tu.MockStatsService{}
		query := NewProfileQuery(svc, NewCache(time.Hour))

		result := query.Fetch(ctx, Gate{Token: "tok_abc", Enabled: true})
		if result.Status != Success {
			t.Fatalf("expected Success, got %s (%v)", result.Status, result.Err)
		}
		if result.Data.ID != "mock_user" {
			t.Errorf("unexpected profile: %+v", result.Data)
		}
	})

	t.Run("profiles for distinct tokens do not collide", func(t *testing.T) {
		svc := &tu.MockStatsService{
			MeFunc: func(ctx context.Context, token string) (*services.User, error) {
				return &services.User{ID: token}, nil
			},
		}
		query := NewProfileQuery(svc, NewCache(time.Hour))

		first := query.Fetch(ctx, Gate{Token: "tok_a", Enabled: true})
		second := query.Fetch(ctx, Gate{Token: "tok_b", Enabled: true})

		if first.Data.ID != "tok_a" || second.Data.ID != "tok_b" {
			t.Errorf("expected per-token results, got %q and %q", first.Data.ID, second.Data.ID)
		}
		if svc.MeCalls != 2 {
			t.Errorf("expected two service calls, got %d", svc.MeCalls)
		}
	})
}
