package helpers

import (
	"log/slog"

	"github.com/kagace/melobot/core/logger"
	"github.com/kagace/melobot/core/telegram/format"

	tele "gopkg.in/telebot.v4"
)

// FailureNotice is the fixed plain-text notice delivered when both the
// formatted send and the stripped fallback fail.
const FailureNotice = "Произошла ошибка при отправке сообщения"

// SafeSend delivers text to the current recipient, never letting a transport
// error escape. Oversized payloads are truncated below the Telegram limit.
// If the formatted send is rejected (malformed markup, size, connectivity),
// a fresh copy of the original text with all markup characters stripped is
// retried without a parse mode; if that fails too, FailureNotice goes out
// and false is reported. Escaping is the caller's job: SafeSend passes
// already-formatted text through untouched.
func SafeSend(c tele.Context, text string, opts ...*tele.SendOptions) bool {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	ctx := BuildContext(c)

	payload := format.Truncate(text, format.TextLimit)
	err := plainSend(c, payload, sendOpts)
	if err == nil {
		return true
	}
	logger.Warn(ctx, "tg.sender", "send.degraded",
		slog.String("status", "retry"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)

	clean := format.Truncate(format.StripMarkdown(text), format.TextLimit)
	if err = plainSend(c, clean, nil); err == nil {
		return true
	}
	logger.Error(ctx, "tg.sender", "send.fallback_failed",
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)

	if err = plainSend(c, FailureNotice, nil); err != nil {
		logger.Error(ctx, "tg.sender", "send.notice_failed",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return false
}

// SendPhotoMD sends an image by URL with a Markdown caption. Callers fall
// back to SafeSend of the same caption when the photo is rejected.
func SendPhotoMD(c tele.Context, url, caption string) error {
	photo := &tele.Photo{File: tele.FromURL(url), Caption: caption}
	return c.Send(photo, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func plainSend(c tele.Context, text string, opts *tele.SendOptions) error {
	if opts != nil {
		return c.Send(text, opts)
	}
	return c.Send(text)
}
