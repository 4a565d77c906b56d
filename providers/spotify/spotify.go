// Package spotify implements catalog search against the Spotify Web API
// using the client-credentials grant.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kagace/melobot/core/logger"
	"github.com/kagace/melobot/providers"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com"

	// tokenSlack renews the cached token slightly before Spotify expires it.
	tokenSlack = 30 * time.Second
)

// Config carries the application credentials for the client-credentials grant.
type Config struct {
	ClientID     string
	ClientSecret string
}

// Client searches the Spotify catalog. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client

	accountsURL string
	apiURL      string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// New constructs a Client using the provided HTTP client.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:         cfg,
		http:        httpClient,
		accountsURL: defaultAccountsURL,
		apiURL:      defaultAPIURL,
	}
}

// SearchTracks returns up to limit tracks ordered by Spotify relevance.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]providers.Track, error) {
	var payload struct {
		Tracks struct {
			Items []trackItem `json:"items"`
		} `json:"tracks"`
	}
	if err := c.search(ctx, query, "track", limit, &payload); err != nil {
		return nil, err
	}
	tracks := make([]providers.Track, 0, len(payload.Tracks.Items))
	for _, item := range payload.Tracks.Items {
		tracks = append(tracks, providers.Track{
			Name:     item.Name,
			Artist:   firstArtist(item.Artists),
			Album:    item.Album.Name,
			URL:      item.ExternalURLs.Spotify,
			ImageURL: firstImage(item.Album.Images),
		})
	}
	return tracks, nil
}

// SearchAlbums returns up to limit albums ordered by Spotify relevance.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]providers.Album, error) {
	var payload struct {
		Albums struct {
			Items []albumItem `json:"items"`
		} `json:"albums"`
	}
	if err := c.search(ctx, query, "album", limit, &payload); err != nil {
		return nil, err
	}
	albums := make([]providers.Album, 0, len(payload.Albums.Items))
	for _, item := range payload.Albums.Items {
		albums = append(albums, providers.Album{
			Name:        item.Name,
			Artist:      firstArtist(item.Artists),
			URL:         item.ExternalURLs.Spotify,
			ImageURL:    firstImage(item.Images),
			ReleaseDate: item.ReleaseDate,
		})
	}
	return albums, nil
}

type artistRef struct {
	Name string `json:"name"`
}

type imageRef struct {
	URL string `json:"url"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type trackItem struct {
	Name    string `json:"name"`
	Artists []artistRef `json:"artists"`
	Album   struct {
		Name   string     `json:"name"`
		Images []imageRef `json:"images"`
	} `json:"album"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type albumItem struct {
	Name         string       `json:"name"`
	Artists      []artistRef  `json:"artists"`
	Images       []imageRef   `json:"images"`
	ExternalURLs externalURLs `json:"external_urls"`
	ReleaseDate  string       `json:"release_date"`
}

func (c *Client) search(ctx context.Context, query, kind string, limit int, out any) error {
	if limit <= 0 {
		limit = 1
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("spotify: build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("spotify: search %s: %w", kind, err)
	}
	defer resp.Body.Close()

	logger.Debug(ctx, "api.spotify", "api.search",
		slog.String("api", kind),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spotify: search %s: unexpected status %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify: decode %s response: %w", kind, err)
	}
	return nil
}

// accessToken returns the cached token, requesting a fresh one when the
// cached one is missing or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenSlack)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("spotify: build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify: token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify: token request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("spotify: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("spotify: token response carried no access_token")
	}

	c.token = payload.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.token, nil
}

func firstArtist(artists []artistRef) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

func firstImage(images []imageRef) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
