package bot

import (
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/kagace/melobot/core/buildinfo"
	"github.com/kagace/melobot/core/logger"
	"github.com/kagace/melobot/core/telegram/format"
	"github.com/kagace/melobot/core/telegram/helpers"
	"github.com/kagace/melobot/core/telegram/keyboard"
	"github.com/kagace/melobot/core/telegram/state"
	"github.com/kagace/melobot/providers"
)

// lyricsLimit caps the lyric body so the final message stays under the
// Telegram text limit after title and source link are added.
const lyricsLimit = 4000

// defaultVideoResults is how many videos a single query replies with.
const defaultVideoResults = 3

// Handlers binds providers and conversation state to Telegram handlers.
type Handlers struct {
	States state.Manager

	Catalog providers.CatalogSearcher
	Videos  providers.VideoSearcher
	Lyrics  providers.LyricsSearcher

	// NotifyLyricsMiss makes a failed lyrics lookup answer with the
	// not-found message instead of staying silent.
	NotifyLyricsMiss bool
	// VideoResultLimit overrides defaultVideoResults when positive.
	VideoResultLimit int

	startedAt time.Time
	// Errors reports the outbound dispatcher failure count for /stats.
	Errors func() uint64
}

func mdOpts() *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeMarkdown}
}

// Start greets the user and shows the selection keyboard.
func (h *Handlers) Start(c tele.Context) error {
	markup := keyboard.ReplyButtons(
		[]string{LabelTrackSearch},
		[]string{LabelAlbumSearch},
		[]string{LabelVideoSearch},
		[]string{LabelLyricsSearch},
	)
	return helpers.SendText(c, msgGreeting, &tele.SendOptions{ReplyMarkup: markup})
}

// Help describes the available features.
func (h *Handlers) Help(c tele.Context) error {
	return helpers.SendMD(c, msgHelp)
}

// Stats reports build and runtime info. Admin only.
func (h *Handlers) Stats(c tele.Context) error {
	var errs uint64
	if h.Errors != nil {
		errs = h.Errors()
	}
	text := fmt.Sprintf(
		"version: %s\ncommit: %s\nuptime: %s\nsend errors: %d",
		buildinfo.Version,
		buildinfo.Commit,
		time.Since(h.startedAt).Round(time.Second),
		errs,
	)
	return helpers.SendText(c, text)
}

func (h *Handlers) selectIntent(st state.State, prompt string) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.States.SetState(c.Sender().ID, st)
		return helpers.SendText(c, prompt)
	}
}

// SelectTrackSearch arms track search for the sender.
func (h *Handlers) SelectTrackSearch(c tele.Context) error {
	return h.selectIntent(StateAwaitingTrackQuery, promptTrackQuery)(c)
}

// SelectAlbumSearch arms album search for the sender.
func (h *Handlers) SelectAlbumSearch(c tele.Context) error {
	return h.selectIntent(StateAwaitingAlbumQuery, promptAlbumQuery)(c)
}

// SelectVideoSearch arms video search for the sender.
func (h *Handlers) SelectVideoSearch(c tele.Context) error {
	return h.selectIntent(StateAwaitingVideoQuery, promptVideoQuery)(c)
}

// SelectLyricsSearch arms lyrics search for the sender.
func (h *Handlers) SelectLyricsSearch(c tele.Context) error {
	return h.selectIntent(StateAwaitingLyricsQuery, promptLyricsQuery)(c)
}

// TrackQuery resolves a pending track search.
func (h *Handlers) TrackQuery(c tele.Context) error {
	helpers.SafeSend(c, noticeSearchingTracks)

	tracks, err := h.Catalog.SearchTracks(helpers.BuildContext(c), c.Text(), 1)
	if err != nil {
		logSearchError(c, "spotify", "tracks", err)
		tracks = nil
	}
	if len(tracks) == 0 {
		helpers.SafeSend(c, msgNothingFound)
		return nil
	}

	t := tracks[0]
	caption := fmt.Sprintf(
		"*%s* - %s\nАльбом: %s\n[Слушать на Spotify](%s)",
		format.EscapeMarkdown(t.Artist),
		format.EscapeMarkdown(t.Name),
		format.EscapeMarkdown(t.Album),
		t.URL,
	)
	h.sendResult(c, t.ImageURL, caption)
	return nil
}

// AlbumQuery resolves a pending album search.
func (h *Handlers) AlbumQuery(c tele.Context) error {
	helpers.SafeSend(c, noticeSearchingAlbums)

	albums, err := h.Catalog.SearchAlbums(helpers.BuildContext(c), c.Text(), 1)
	if err != nil {
		logSearchError(c, "spotify", "albums", err)
		albums = nil
	}
	if len(albums) == 0 {
		helpers.SafeSend(c, msgNothingFound)
		return nil
	}

	a := albums[0]
	caption := fmt.Sprintf(
		"*%s* - %s\nДата релиза: %s\n[Слушать на Spotify](%s)",
		format.EscapeMarkdown(a.Artist),
		format.EscapeMarkdown(a.Name),
		a.ReleaseDate,
		a.URL,
	)
	h.sendResult(c, a.ImageURL, caption)
	return nil
}

// VideoQuery resolves a pending video search, answering with one message
// per result.
func (h *Handlers) VideoQuery(c tele.Context) error {
	helpers.SafeSend(c, noticeSearchingVideos)

	limit := h.VideoResultLimit
	if limit <= 0 {
		limit = defaultVideoResults
	}

	videos, err := h.Videos.SearchVideos(helpers.BuildContext(c), c.Text(), limit)
	if err != nil {
		logSearchError(c, "youtube", "videos", err)
		videos = nil
	}
	if len(videos) == 0 {
		helpers.SafeSend(c, msgNothingFoundYouTube)
		return nil
	}

	if len(videos) > limit {
		videos = videos[:limit]
	}
	for _, v := range videos {
		published := v.PublishedAt
		if len(published) > 10 {
			published = published[:10]
		}
		caption := fmt.Sprintf(
			"*%s*\nКанал: %s\nОпубликовано: %s\n[Смотреть на YouTube](%s)",
			format.EscapeMarkdown(v.Title),
			format.EscapeMarkdown(v.Channel),
			published,
			v.URL,
		)
		h.sendResult(c, v.Thumbnail, caption)
	}
	return nil
}

// LyricsQuery resolves a pending lyrics search. A miss is silent unless
// NotifyLyricsMiss is set.
func (h *Handlers) LyricsQuery(c tele.Context) error {
	helpers.SafeSend(c, noticeSearchingLyrics)

	song, err := h.Lyrics.SearchLyrics(helpers.BuildContext(c), c.Text())
	if err != nil {
		logSearchError(c, "genius", "lyrics", err)
		song = nil
	}
	// A hit whose page yielded no lyric text counts as a miss too.
	if song == nil || song.Lyrics == "" {
		if h.NotifyLyricsMiss {
			helpers.SafeSend(c, msgNothingFound)
		}
		return nil
	}

	lyrics := song.Lyrics
	if runes := []rune(lyrics); len(runes) > lyricsLimit {
		lyrics = string(runes[:lyricsLimit]) + lyricsTruncatedSuffix
	}

	text := fmt.Sprintf(
		"*%s* - %s\n\n%s\n\n[Источник](%s)",
		format.EscapeMarkdown(song.Artist),
		format.EscapeMarkdown(song.Title),
		format.EscapeMarkdown(lyrics),
		song.URL,
	)
	helpers.SafeSend(c, text, mdOpts())
	return nil
}

// sendResult prefers a photo with caption and falls back to a plain text
// message carrying the same caption.
func (h *Handlers) sendResult(c tele.Context, imageURL, caption string) {
	if imageURL != "" {
		if err := helpers.SendPhotoMD(c, imageURL, caption); err == nil {
			return
		}
	}
	helpers.SafeSend(c, caption, mdOpts())
}

func logSearchError(c tele.Context, provider, kind string, err error) {
	logger.Error(helpers.BuildContext(c), "bot", "search failed",
		slog.String("event", "search.failed"),
		slog.String("provider", provider),
		slog.String("api", kind),
		slog.String("query", c.Text()),
		slog.Any("error", err),
	)
}
