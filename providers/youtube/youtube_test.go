package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `{"items":[
	{"id":{"videoId":"abc123"},"snippet":{
		"title":"Daft Punk - One More Time (Official Video)",
		"channelTitle":"Daft Punk",
		"publishedAt":"2001-02-26T00:00:00Z",
		"thumbnails":{"high":{"url":"https://i.ytimg.com/vi/abc123/hqdefault.jpg"}}}},
	{"id":{"videoId":"def456"},"snippet":{
		"title":"One More Time (Live)",
		"channelTitle":"Concerts",
		"publishedAt":"2007-06-01T00:00:00Z",
		"thumbnails":{"high":{"url":"https://i.ytimg.com/vi/def456/hqdefault.jpg"}}}},
	{"id":{"videoId":""},"snippet":{"title":"broken item"}}
]}`

func TestSearchVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/search", r.URL.Path)
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "3", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "test-key"}, srv.Client())
	c.apiURL = srv.URL

	videos, err := c.SearchVideos(context.Background(), "one more time", 3)
	require.NoError(t, err)
	require.Len(t, videos, 2, "items without a videoId must be dropped")

	assert.Equal(t, "Daft Punk - One More Time (Official Video)", videos[0].Title)
	assert.Equal(t, "Daft Punk", videos[0].Channel)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", videos[0].URL)
	assert.Equal(t, "https://i.ytimg.com/vi/abc123/hqdefault.jpg", videos[0].Thumbnail)
	assert.Equal(t, "2001-02-26T00:00:00Z", videos[0].PublishedAt)
	assert.Equal(t, "https://www.youtube.com/watch?v=def456", videos[1].URL, "upstream order must be preserved")
}

func TestSearchVideosUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quotaExceeded"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k"}, srv.Client())
	c.apiURL = srv.URL

	_, err := c.SearchVideos(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
