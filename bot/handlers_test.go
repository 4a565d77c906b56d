package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/kagace/melobot/core/telegram"
	"github.com/kagace/melobot/core/telegram/format"
	"github.com/kagace/melobot/core/telegram/router"
	"github.com/kagace/melobot/core/telegram/state"
	"github.com/kagace/melobot/providers"
)

type sentMsg struct {
	text  string
	photo *tele.Photo
	opts  *tele.SendOptions
}

// chatCtx fakes the subset of tele.Context the handlers touch.
type chatCtx struct {
	tele.Context

	userID   int64
	text     string
	store    map[string]interface{}
	sent     []sentMsg
	photoErr error
}

func newChatCtx(userID int64, text string) *chatCtx {
	return &chatCtx{userID: userID, text: text, store: map[string]interface{}{}}
}

func (c *chatCtx) Send(what interface{}, opts ...interface{}) error {
	var so *tele.SendOptions
	for _, o := range opts {
		if v, ok := o.(*tele.SendOptions); ok {
			so = v
		}
	}
	switch v := what.(type) {
	case string:
		c.sent = append(c.sent, sentMsg{text: v, opts: so})
	case *tele.Photo:
		if c.photoErr != nil {
			return c.photoErr
		}
		c.sent = append(c.sent, sentMsg{photo: v, opts: so})
	}
	return nil
}

func (c *chatCtx) Get(key string) interface{}    { return c.store[key] }
func (c *chatCtx) Set(key string, v interface{}) { c.store[key] = v }
func (c *chatCtx) Update() tele.Update           { return tele.Update{ID: 7} }
func (c *chatCtx) Sender() *tele.User            { return &tele.User{ID: c.userID, Username: "tester"} }
func (c *chatCtx) Chat() *tele.Chat              { return &tele.Chat{ID: c.userID} }
func (c *chatCtx) Text() string                  { return c.text }

type fakeCatalog struct {
	tracks []providers.Track
	albums []providers.Album
	err    error
	calls  int
	query  string
}

func (f *fakeCatalog) SearchTracks(_ context.Context, query string, _ int) ([]providers.Track, error) {
	f.calls++
	f.query = query
	return f.tracks, f.err
}

func (f *fakeCatalog) SearchAlbums(_ context.Context, query string, _ int) ([]providers.Album, error) {
	f.calls++
	f.query = query
	return f.albums, f.err
}

type fakeVideos struct {
	videos []providers.Video
	err    error
	calls  int
}

func (f *fakeVideos) SearchVideos(_ context.Context, _ string, _ int) ([]providers.Video, error) {
	f.calls++
	return f.videos, f.err
}

type fakeLyrics struct {
	song  *providers.Song
	err   error
	calls int
}

func (f *fakeLyrics) SearchLyrics(_ context.Context, _ string) (*providers.Song, error) {
	f.calls++
	return f.song, f.err
}

func newHandlers() (*Handlers, *fakeCatalog, *fakeVideos, *fakeLyrics) {
	catalog := &fakeCatalog{}
	videos := &fakeVideos{}
	lyrics := &fakeLyrics{}
	h := &Handlers{
		States:  state.NewMemoryManager(),
		Catalog: catalog,
		Videos:  videos,
		Lyrics:  lyrics,
	}
	return h, catalog, videos, lyrics
}

func TestSelectionArmsIntentForSenderOnly(t *testing.T) {
	h, _, _, _ := newHandlers()
	c := newChatCtx(42, LabelTrackSearch)

	require.NoError(t, h.SelectTrackSearch(c))

	assert.Equal(t, StateAwaitingTrackQuery, h.States.GetState(42))
	assert.False(t, h.States.InProgress(43), "other users must stay idle")
	require.Len(t, c.sent, 1)
	assert.Equal(t, promptTrackQuery, c.sent[0].text)
}

func TestTrackQuerySendsPhotoWithCaption(t *testing.T) {
	h, catalog, _, _ := newHandlers()
	catalog.tracks = []providers.Track{{
		Name:     "Losing My Religion",
		Artist:   "R.E.M.",
		Album:    "Out of Time",
		URL:      "https://open.spotify.com/track/1",
		ImageURL: "https://i.scdn.co/image/1",
	}}
	c := newChatCtx(42, "losing my religion")

	require.NoError(t, h.TrackQuery(c))

	assert.Equal(t, "losing my religion", catalog.query)
	require.Len(t, c.sent, 2)
	assert.Equal(t, noticeSearchingTracks, c.sent[0].text)

	photo := c.sent[1].photo
	require.NotNil(t, photo)
	assert.Contains(t, photo.Caption, format.EscapeMarkdown("R.E.M."))
	assert.Contains(t, photo.Caption, "[Слушать на Spotify](https://open.spotify.com/track/1)")
}

func TestTrackQueryFallsBackToTextWhenPhotoFails(t *testing.T) {
	h, catalog, _, _ := newHandlers()
	catalog.tracks = []providers.Track{{
		Name:     "Song",
		Artist:   "Artist",
		Album:    "Album",
		URL:      "https://open.spotify.com/track/2",
		ImageURL: "https://i.scdn.co/image/2",
	}}
	c := newChatCtx(42, "song")
	c.photoErr = errors.New("telegram: wrong file identifier (400)")

	require.NoError(t, h.TrackQuery(c))

	require.Len(t, c.sent, 2)
	last := c.sent[1]
	assert.Contains(t, last.text, "[Слушать на Spotify](https://open.spotify.com/track/2)")
	require.NotNil(t, last.opts)
	assert.Equal(t, tele.ModeMarkdown, last.opts.ParseMode)
}

func TestTrackQueryProviderErrorAnswersNothingFound(t *testing.T) {
	h, catalog, _, _ := newHandlers()
	catalog.err = errors.New("spotify: search tracks: unexpected status 502")
	c := newChatCtx(42, "query")

	require.NoError(t, h.TrackQuery(c))

	require.Len(t, c.sent, 2)
	assert.Equal(t, msgNothingFound, c.sent[1].text)
}

func TestAlbumQueryKeepsReleaseDateVerbatim(t *testing.T) {
	h, catalog, _, _ := newHandlers()
	catalog.albums = []providers.Album{{
		Name:        "Out of Time",
		Artist:      "R.E.M.",
		URL:         "https://open.spotify.com/album/1",
		ReleaseDate: "1991-03-12",
	}}
	c := newChatCtx(42, "out of time")

	require.NoError(t, h.AlbumQuery(c))

	require.Len(t, c.sent, 2)
	assert.Contains(t, c.sent[1].text, "Дата релиза: 1991-03-12")
}

func TestVideoQuerySendsLimitedResultsInOrder(t *testing.T) {
	h, _, videos, _ := newHandlers()
	for i := 1; i <= 5; i++ {
		videos.videos = append(videos.videos, providers.Video{
			Title:       fmt.Sprintf("Video %d", i),
			Channel:     "Channel",
			URL:         fmt.Sprintf("https://www.youtube.com/watch?v=%d", i),
			PublishedAt: "2024-06-01T10:00:00Z",
		})
	}
	c := newChatCtx(42, "query")

	require.NoError(t, h.VideoQuery(c))

	require.Len(t, c.sent, 1+defaultVideoResults)
	assert.Equal(t, noticeSearchingVideos, c.sent[0].text)
	for i := 0; i < defaultVideoResults; i++ {
		assert.Contains(t, c.sent[i+1].text, fmt.Sprintf("Video %d", i+1))
		assert.Contains(t, c.sent[i+1].text, "Опубликовано: 2024-06-01")
	}
}

func TestVideoQueryMissUsesYouTubeMessage(t *testing.T) {
	h, _, _, _ := newHandlers()
	c := newChatCtx(42, "query")

	require.NoError(t, h.VideoQuery(c))

	require.Len(t, c.sent, 2)
	assert.Equal(t, msgNothingFoundYouTube, c.sent[1].text)
}

func TestLyricsMissStaysSilent(t *testing.T) {
	h, _, _, lyrics := newHandlers()
	c := newChatCtx(42, "unknown song")

	require.NoError(t, h.LyricsQuery(c))

	assert.Equal(t, 1, lyrics.calls)
	require.Len(t, c.sent, 1, "a miss must produce only the searching notice")
	assert.Equal(t, noticeSearchingLyrics, c.sent[0].text)
}

func TestLyricsEmptyBodyTreatedAsMiss(t *testing.T) {
	h, _, _, lyrics := newHandlers()
	lyrics.song = &providers.Song{
		Title:  "Song",
		Artist: "Artist",
		URL:    "https://genius.com/song",
		Lyrics: "",
	}
	c := newChatCtx(42, "song")

	require.NoError(t, h.LyricsQuery(c))

	require.Len(t, c.sent, 1, "a hit without lyric text must stay silent")
	assert.Equal(t, noticeSearchingLyrics, c.sent[0].text)
}

func TestLyricsMissNotifiesWhenEnabled(t *testing.T) {
	h, _, _, _ := newHandlers()
	h.NotifyLyricsMiss = true
	c := newChatCtx(42, "unknown song")

	require.NoError(t, h.LyricsQuery(c))

	require.Len(t, c.sent, 2)
	assert.Equal(t, msgNothingFound, c.sent[1].text)
}

func TestLyricsTruncatedToFitLimit(t *testing.T) {
	h, _, _, lyrics := newHandlers()
	lyrics.song = &providers.Song{
		Title:  "Song",
		Artist: "Artist",
		URL:    "https://genius.com/song",
		Lyrics: strings.Repeat("а", lyricsLimit+500),
	}
	c := newChatCtx(42, "song")

	require.NoError(t, h.LyricsQuery(c))

	require.Len(t, c.sent, 2)
	body := c.sent[1].text
	assert.Contains(t, body, "(текст обрезан")
	assert.LessOrEqual(t, len([]rune(body)), format.TextLimit)
}

func TestPendingIntentClearedAfterDispatch(t *testing.T) {
	h, catalog, _, _ := newHandlers()
	state.RegisterHandler(StateAwaitingTrackQuery, h.TrackQuery)
	h.States.SetState(42, StateAwaitingTrackQuery)

	c := newChatCtx(42, "first query")
	require.NoError(t, h.States.ManagerHandler(c))

	assert.Equal(t, 1, catalog.calls)
	assert.False(t, h.States.InProgress(42), "intent must not survive the round-trip")

	require.NoError(t, h.States.ManagerHandler(newChatCtx(42, "second text")))
	assert.Equal(t, 1, catalog.calls, "idle text must not trigger a search")
}

func TestLabelOverridesPendingIntent(t *testing.T) {
	h, catalog, _, _ := newHandlers()
	reg := tg.NewRegistry()
	reg.RegisterLabel(LabelAlbumSearch, h.SelectAlbumSearch)

	h.States.SetState(42, StateAwaitingTrackQuery)
	routes := router.TextRoutes(h.States, reg, router.TextOptions{})
	require.Len(t, routes, 1)

	c := newChatCtx(42, strings.ToUpper(LabelAlbumSearch))
	require.NoError(t, routes[0].Handler(c))

	assert.Zero(t, catalog.calls, "the label must win over the pending intent")
	assert.Equal(t, StateAwaitingAlbumQuery, h.States.GetState(42))
	require.Len(t, c.sent, 1)
	assert.Equal(t, promptAlbumQuery, c.sent[0].text)
}

func TestIdleTextProducesNoReplyAndNoSearch(t *testing.T) {
	h, catalog, videos, lyrics := newHandlers()
	reg := tg.NewRegistry()
	reg.RegisterLabel(LabelTrackSearch, h.SelectTrackSearch)

	routes := router.TextRoutes(h.States, reg, router.TextOptions{})
	require.Len(t, routes, 1)

	c := newChatCtx(42, "random chatter")
	require.NoError(t, routes[0].Handler(c))

	assert.Empty(t, c.sent)
	assert.Zero(t, catalog.calls)
	assert.Zero(t, videos.calls)
	assert.Zero(t, lyrics.calls)
	assert.False(t, h.States.InProgress(42))
}
