// package services defines the HTTP accessor for the statistics proxy
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import "context"

// StatsService is the remote accessor for the statistics proxy.
//
// Every protected call carries the caller's token; the proxy authenticates by
// a query-level credential rather than a bearer header.
type StatsService interface {
	// Me retrieves the profile of the user the token belongs to.
	Me(ctx context.Context, token string) (*User, error)

	// TopItems retrieves the user's top artists and/or tracks.
	TopItems(ctx context.Context, token string, params TopItemsParams) (*TopItems, error)

	// Raw performs a GET against an arbitrary proxy path, for debugging.
	Raw(ctx context.Context, path, token string) (*RawResponse, error)
}
