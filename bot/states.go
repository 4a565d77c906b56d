package bot

import "github.com/kagace/melobot/core/telegram/state"

// Pending intents: each selection label arms exactly one of these, and the
// next text message from the same user fulfils it.
const (
	StateAwaitingTrackQuery  state.State = "awaiting_track_query"
	StateAwaitingAlbumQuery  state.State = "awaiting_album_query"
	StateAwaitingVideoQuery  state.State = "awaiting_video_query"
	StateAwaitingLyricsQuery state.State = "awaiting_lyrics_query"
)
