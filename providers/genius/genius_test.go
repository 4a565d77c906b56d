package genius

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songPage = `<html><body>
<div data-lyrics-container="true">[Verse 1]<br/>First line<br>Second &amp; line</div>
<div class="ad">skip me</div>
<div data-lyrics-container="true">[Chorus]<br/><a href="/x">Linked</a> words<br/><i>soft</i> ending</div>
</body></html>`

// newTestClient serves both the search API and the song page from a single
// server so the search response can link to a reachable page URL.
func newTestClient(t *testing.T, search http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", search)
	mux.HandleFunc("/songs/losing-my-religion", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, songPage)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(Config{AccessToken: "token"}, srv.Client())
	c.apiURL = srv.URL
	return c
}

func searchResponse(baseURL string) string {
	return fmt.Sprintf(`{"response":{"hits":[{"result":{
		"title":"Losing My Religion",
		"url":%q,
		"primary_artist":{"name":"R.E.M."}
	}}]}}`, baseURL+"/songs/losing-my-religion")
}

func TestSearchLyrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "losing my religion", r.URL.Query().Get("q"))
		fmt.Fprint(w, searchResponse("http://"+r.Host))
	})

	song, err := c.SearchLyrics(context.Background(), "losing my religion")
	require.NoError(t, err)
	require.NotNil(t, song)

	assert.Equal(t, "Losing My Religion", song.Title)
	assert.Equal(t, "R.E.M.", song.Artist)
	assert.Contains(t, song.URL, "/songs/losing-my-religion")
	assert.Equal(t, "First line\nSecond & line\nLinked words\nsoft ending", song.Lyrics)
}

func TestSearchLyricsNoHits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"hits":[]}}`)
	})

	song, err := c.SearchLyrics(context.Background(), "nothing at all")
	require.NoError(t, err)
	assert.Nil(t, song)
}

func TestSearchLyricsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.SearchLyrics(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestExtractLyricsEmptyPage(t *testing.T) {
	assert.Empty(t, extractLyrics("<html><body>no containers here</body></html>"))
}
