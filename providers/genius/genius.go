// Package genius implements lyrics lookup through the Genius search API.
// Genius exposes song metadata over the API but not lyric text, so the
// lyrics are extracted from the song page itself.
package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kagace/melobot/core/logger"
	"github.com/kagace/melobot/providers"
)

const defaultAPIURL = "https://api.genius.com"

// pageBodyLimit bounds how much of a song page is read while extracting.
const pageBodyLimit = 2 << 20

// Config carries the Genius API access token.
type Config struct {
	AccessToken string
}

// Client resolves queries to songs with lyrics. Safe for concurrent use.
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

// SearchLyrics returns the best search hit with its lyrics, or nil when the
// query matches nothing.
func (c *Client) SearchLyrics(ctx context.Context, query string) (*providers.Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("genius: build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genius: search: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug(ctx, "api.genius", "api.search",
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genius: search: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Response struct {
			Hits []struct {
				Result struct {
					Title         string `json:"title"`
					URL           string `json:"url"`
					PrimaryArtist struct {
						Name string `json:"name"`
					} `json:"primary_artist"`
				} `json:"result"`
			} `json:"hits"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("genius: decode search response: %w", err)
	}
	if len(payload.Response.Hits) == 0 {
		return nil, nil
	}

	hit := payload.Response.Hits[0].Result
	lyrics, err := c.fetchLyrics(ctx, hit.URL)
	if err != nil {
		return nil, err
	}

	return &providers.Song{
		Title:  hit.Title,
		Artist: hit.PrimaryArtist.Name,
		URL:    hit.URL,
		Lyrics: lyrics,
	}, nil
}

func (c *Client) fetchLyrics(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("genius: build page request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("genius: fetch song page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius: fetch song page: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, pageBodyLimit))
	if err != nil {
		return "", fmt.Errorf("genius: read song page: %w", err)
	}
	return extractLyrics(string(body)), nil
}

var (
	breakRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	sectionRe = regexp.MustCompile(`(?m)^\[[^\]\n]*\][ \t]*\n?`)
)

// extractLyrics pulls the text out of the page's data-lyrics-container
// blocks, drops markup, and removes section headers like [Chorus].
func extractLyrics(page string) string {
	const marker = `data-lyrics-container="true"`

	var blocks []string
	rest := page
	for {
		idx := strings.Index(rest, marker)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(marker):]
		open := strings.Index(rest, ">")
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		end := strings.Index(rest, "</div>")
		if end < 0 {
			break
		}
		blocks = append(blocks, rest[:end])
		rest = rest[end:]
	}
	if len(blocks) == 0 {
		return ""
	}

	raw := strings.Join(blocks, "\n")
	raw = breakRe.ReplaceAllString(raw, "\n")
	raw = tagRe.ReplaceAllString(raw, "")
	raw = html.UnescapeString(raw)
	raw = sectionRe.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}
