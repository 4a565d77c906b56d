package bot

// Reply-keyboard selection labels. These exact strings arrive back as text
// messages when the user taps a button.
const (
	LabelTrackSearch  = "Поиск треков"
	LabelAlbumSearch  = "Поиск альбомов"
	LabelVideoSearch  = "Поиск на YouTube"
	LabelLyricsSearch = "Текст песни"
)

const (
	msgGreeting = "Привет! Я музыкальный бот от kagace\nВыбери, что тебе интересно:"

	msgHelp = "*Что я умею:*\n\n" +
		"• *Поиск треков* — найду треки на Spotify по названию\n" +
		"• *Поиск альбомов* — найду альбомы на Spotify\n" +
		"• *Поиск на YouTube* — найду музыкальные видео\n" +
		"• *Текст песни* — найду текст песни на Genius\n\n" +
		"Выбери действие на клавиатуре и введи запрос."
)

const (
	promptTrackQuery  = "Введите название трека для поиска:"
	promptAlbumQuery  = "Введите название альбомов для поиска:"
	promptVideoQuery  = "Введите запрос для поиска видео на YouTube:"
	promptLyricsQuery = "Введите название песни и исполнителя:"
)

const (
	noticeSearchingTracks = "Ищу треки..."
	noticeSearchingAlbums = "Ищу альбомы..."
	noticeSearchingVideos = "Ищу видео на YouTube..."
	noticeSearchingLyrics = "Ищу текст песни..."
)

const (
	msgNothingFound        = "Ничего не найдено"
	msgNothingFoundYouTube = "Ничего не найдено на YouTube"

	// lyricsTruncatedSuffix closes lyrics cut to fit the message limit.
	lyricsTruncatedSuffix = "...\n\n(текст обрезан из-за ограничения длины)"
)
