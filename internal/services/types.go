package services

import (
	"encoding/json"
	"fmt"
)

// TimeRange enumerates the statistics windows the backend understands.
type TimeRange string

const (
	LongTerm   TimeRange = "long_term"
	MediumTerm TimeRange = "medium_term"
	ShortTerm  TimeRange = "short_term"
)

// TimeRanges lists all valid [TimeRange] values.
var TimeRanges = []TimeRange{LongTerm, MediumTerm, ShortTerm}

// ItemType enumerates the top-item categories.
type ItemType string

const (
	ArtistItems ItemType = "artists"
	TrackItems  ItemType = "tracks"
)

// Followers represents a follower count.
type Followers struct {
	Href  string `json:"href,omitempty"`
	Total int    `json:"total"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// ExternalURLs holds links out to the streaming service.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// SimplifiedArtist represents an artist nested within a track or album.
type SimplifiedArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Href         string       `json:"href,omitempty"`
	URI          string       `json:"uri,omitempty"`
	Type         string       `json:"type"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Artist represents a full artist object.
type Artist struct {
	SimplifiedArtist
	Genres     []string  `json:"genres,omitempty"`
	Images     []Image   `json:"images,omitempty"`
	Followers  Followers `json:"followers,omitempty"`
	Popularity int       `json:"popularity,omitempty"`
}

// SimplifiedAlbum represents an album nested within a track.
type SimplifiedAlbum struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	AlbumType    string             `json:"album_type,omitempty"`
	Artists      []SimplifiedArtist `json:"artists,omitempty"`
	Images       []Image            `json:"images"`
	ReleaseDate  string             `json:"release_date,omitempty"`
	TotalTracks  int                `json:"total_tracks,omitempty"`
	Type         string             `json:"type"`
	URI          string             `json:"uri,omitempty"`
	ExternalURLs ExternalURLs       `json:"external_urls"`
}

// Track represents a full track object.
type Track struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Artists      []SimplifiedArtist `json:"artists"`
	Album        SimplifiedAlbum    `json:"album"`
	DurationMS   int                `json:"duration_ms,omitempty"`
	Explicit     bool               `json:"explicit,omitempty"`
	Popularity   int                `json:"popularity,omitempty"`
	Type         string             `json:"type"`
	URI          string             `json:"uri,omitempty"`
	ExternalURLs ExternalURLs       `json:"external_urls"`
}

// User represents the current user's profile.
type User struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	Href         string       `json:"href,omitempty"`
	Images       []Image      `json:"images"`
	Followers    Followers    `json:"followers"`
	Type         string       `json:"type"`
	URI          string       `json:"uri,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// TopItemsResponse is a paginated set of top items.
type TopItemsResponse[T Artist | Track] struct {
	Href     string  `json:"href,omitempty"`
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
}

// TopItems is the /me/top payload. Either section may be absent depending on
// the requested type.
type TopItems struct {
	TopArtists *TopItemsResponse[Artist] `json:"top_artists,omitempty"`
	TopTracks  *TopItemsResponse[Track]  `json:"top_tracks,omitempty"`
}

// ItemKind discriminates the [Item] variant.
type ItemKind string

const (
	ArtistKind ItemKind = "artist"
	TrackKind  ItemKind = "track"
)

// Item is a tagged variant over [Artist] and [Track], discriminated by the
// JSON "type" field. Exactly one of the pointers is non-nil.
type Item struct {
	Kind   ItemKind
	Artist *Artist
	Track  *Track
}

// UnmarshalJSON decodes an item by inspecting its type tag. An unknown or
// missing tag is an error, never a structural guess.
func (i *Item) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to read item type tag: %w", err)
	}

	switch ItemKind(tag.Type) {
	case ArtistKind:
		var artist Artist
		if err := json.Unmarshal(data, &artist); err != nil {
			return fmt.Errorf("failed to decode artist item: %w", err)
		}
		*i = Item{Kind: ArtistKind, Artist: &artist}
		return nil
	case TrackKind:
		var track Track
		if err := json.Unmarshal(data, &track); err != nil {
			return fmt.Errorf("failed to decode track item: %w", err)
		}
		*i = Item{Kind: TrackKind, Track: &track}
		return nil
	default:
		return fmt.Errorf("unknown item type %q", tag.Type)
	}
}

// Name returns the display name of the underlying item.
func (i Item) Name() string {
	switch i.Kind {
	case ArtistKind:
		return i.Artist.Name
	case TrackKind:
		return i.Track.Name
	default:
		return ""
	}
}

// Link returns the item's external streaming-service URL.
func (i Item) Link() string {
	switch i.Kind {
	case ArtistKind:
		return i.Artist.ExternalURLs.Spotify
	case TrackKind:
		return i.Track.ExternalURLs.Spotify
	default:
		return ""
	}
}

// ArtistLine joins a track's artist names for display.
func ArtistLine(t Track) string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	line := ""
	for i, n := range names {
		if i > 0 {
			line += ", "
		}
		line += n
	}
	return line
}
