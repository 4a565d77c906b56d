// Package youtube implements video search against the YouTube Data API v3.
package youtube

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
	"time"

	"github.com/kagace/melobot/core/logger"
	"github.com/kagace/melobot/providers"
)

const defaultAPIURL = "https://www.googleapis.com"

const watchURL = "https://www.youtube.com/watch?v="

// Config carries the Data API key.
type Config struct {
	APIKey string
}

// Client searches YouTube videos. Safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	apiURL string
}

// New constructs a Client using the provided HTTP client.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient, apiURL: defaultAPIURL}
}

// SearchVideos returns up to limit videos in YouTube's relevance order.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]providers.Video, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/youtube/v3/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build search request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: search: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug(ctx, "api.youtube", "api.search",
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube: search: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
				Thumbnails   struct {
					High struct {
						URL string `json:"url"`
					} `json:"high"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("youtube: decode search response: %w", err)
	}

	videos := make([]providers.Video, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, providers.Video{
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			URL:         watchURL + item.ID.VideoID,
			Thumbnail:   item.Snippet.Thumbnails.High.URL,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}
