// Package providers defines the normalized result shapes produced by the
// external media-search APIs and the interfaces the conversation layer
// consumes. Implementations return explicit errors and never panic across
// this boundary; the conversation layer logs an error and then treats it
// exactly like an empty result.
package providers

import "context"

// Track is one catalog search hit.
type Track struct {
	Name     string
	Artist   string
	Album    string
	URL      string
	ImageURL string
}

// Album is one album search hit.
type Album struct {
	Name        string
	Artist      string
	URL         string
	ImageURL    string
	ReleaseDate string
}

// Video is one video search hit.
type Video struct {
	Title       string
	Channel     string
	URL         string
	Thumbnail   string
	PublishedAt string
}

// Song is a lyrics lookup result.
type Song struct {
	Title  string
	Artist string
	URL    string
	Lyrics string
}

// CatalogSearcher finds tracks and albums in a music catalog, ordered by
// upstream relevance.
type CatalogSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error)
}

// VideoSearcher finds videos, ordered by upstream relevance.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]Video, error)
}

// LyricsSearcher resolves a free-text query to a single song with lyrics.
// A nil Song with a nil error means nothing was found.
type LyricsSearcher interface {
	SearchLyrics(ctx context.Context, query string) (*Song, error)
}
