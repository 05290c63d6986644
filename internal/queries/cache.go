// package queries implements the cached, gated fetch layer over the stats proxy.
//
// Remote reads flow through a keyed [Cache]: results stay fresh for a fixed
// window, and concurrent requests for an identical key coalesce onto a single
// in-flight call. The cache is the only shared mutable resource in the
// application and coalescing is its sole concurrency invariant.
package queries

import (
	"time"
)

// DefaultTTL is the freshness window for cached results.
const DefaultTTL = 60 * time.Minute

// Status enumerates the observable states of a query.
type Status int

const (
	Pending Status = iota
	Success
	Error
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the boundary type handed to consumers: failures become state,
// never escaped errors.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

// entry is a single cache slot. done is closed once the in-flight fetch
// settles; waiters attach to it instead of issuing a duplicate call.
type entry struct {
	status    Status
	data      any
	err       error
	fetchedAt time.Time
	done      chan struct{}
}

// Key builds a stable cache key from the logical query name, the token, and
// every explicit parameter of the call.
func Key(name, token string, params ...string) string {
	key := name + "|" + token
	for _, p := range params {
		key += "|" + p
	}
	return key
}
