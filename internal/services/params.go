package services

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/tempo/internal/shared"
)

// TopItemsParams are the optional query parameters for a /me/top fetch.
//
// Zero values mean "let the backend default apply"; only set fields are sent.
// Every field participates in the query cache key.
type TopItemsParams struct {
	Type      ItemType  // artists or tracks; empty fetches both
	Limit     int       // page size, 1..50
	Offset    int       // page start
	TimeRange TimeRange // long_term, medium_term or short_term
}

// Validate checks enum fields and bounds.
func (p TopItemsParams) Validate() error {
	switch p.Type {
	case "", ArtistItems, TrackItems:
	default:
		return fmt.Errorf("%w: type must be %q or %q", shared.ErrInvalidArgument, ArtistItems, TrackItems)
	}

	switch p.TimeRange {
	case "", LongTerm, MediumTerm, ShortTerm:
	default:
		return fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, p.TimeRange)
	}

	if p.Limit < 0 || p.Limit > 50 {
		return fmt.Errorf("%w: limit must be between 1 and 50", shared.ErrInvalidArgument)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative", shared.ErrInvalidArgument)
	}

	return nil
}

// Values encodes the set fields as URL query parameters.
func (p TopItemsParams) Values() url.Values {
	values := url.Values{}
	if p.Type != "" {
		values.Set("type", string(p.Type))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		values.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.TimeRange != "" {
		values.Set("time_range", string(p.TimeRange))
	}
	return values
}

// Key returns a stable cache-key fragment covering every explicit parameter.
func (p TopItemsParams) Key() string {
	return fmt.Sprintf("type=%s&limit=%d&offset=%d&time_range=%s", p.Type, p.Limit, p.Offset, p.TimeRange)
}
