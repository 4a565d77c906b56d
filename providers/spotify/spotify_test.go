package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, searchHandler http.HandlerFunc) *Client {
	t.Helper()
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(accounts.Close)

	api := httptest.NewServer(searchHandler)
	t.Cleanup(api.Close)

	c := New(Config{ClientID: "id", ClientSecret: "secret"}, api.Client())
	c.accountsURL = accounts.URL
	c.apiURL = api.URL
	return c
}

func TestSearchTracks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		assert.Equal(t, "daft punk", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"tracks":{"items":[{
			"name":"One More Time",
			"artists":[{"name":"Daft Punk"}],
			"album":{"name":"Discovery","images":[{"url":"https://img/cover.jpg"}]},
			"external_urls":{"spotify":"https://open.spotify.com/track/x"}
		}]}}`))
	})

	tracks, err := c.SearchTracks(context.Background(), "daft punk", 1)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "One More Time", tracks[0].Name)
	assert.Equal(t, "Daft Punk", tracks[0].Artist)
	assert.Equal(t, "Discovery", tracks[0].Album)
	assert.Equal(t, "https://open.spotify.com/track/x", tracks[0].URL)
	assert.Equal(t, "https://img/cover.jpg", tracks[0].ImageURL)
}

func TestSearchAlbumsMissingImages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "album", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"albums":{"items":[{
			"name":"Discovery",
			"artists":[{"name":"Daft Punk"}],
			"images":[],
			"external_urls":{"spotify":"https://open.spotify.com/album/y"},
			"release_date":"2001-03-12"
		}]}}`))
	})

	albums, err := c.SearchAlbums(context.Background(), "discovery", 1)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "2001-03-12", albums[0].ReleaseDate)
	assert.Empty(t, albums[0].ImageURL)
}

func TestSearchSurfacesUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":502}}`, http.StatusBadGateway)
	})

	_, err := c.SearchTracks(context.Background(), "query", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestAccessTokenIsCached(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"tracks":{"items":[]}}`))
	})

	_, err := c.SearchTracks(context.Background(), "a", 1)
	require.NoError(t, err)
	_, err = c.SearchTracks(context.Background(), "b", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "token-1", c.token, "second search must reuse the cached token")
}
