// Package audit records who triggered what and which upstream API answered.
// Recorders are pluggable: a CSV file for lightweight installs and Postgres
// when the bot runs with a database.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/kagace/melobot/core/logger"
)

// None marks fields that carry no upstream API information.
const None = "NONE"

// ActionTyping is the action recorded for free-form text messages. Typed
// text is user input, not an API interaction, so API fields stay None.
const ActionTyping = "Keyboard typing"

// Entry is a single audit record.
type Entry struct {
	ID       uuid.UUID `db:"id"`
	Username string    `db:"username"`
	Action   string    `db:"action"`
	API      string    `db:"api"`
	Answer   string    `db:"api_answer"`
	At       time.Time `db:"recorded_at"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Middleware records one entry per handled update before the handler runs.
// Recording failures are logged and never block the handler.
func Middleware(rec Recorder, action, api, answer string) tele.MiddlewareFunc {
	if action == ActionTyping {
		api, answer = None, None
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			e := Entry{
				ID:     uuid.New(),
				Action: action,
				API:    api,
				Answer: answer,
				At:     time.Now(),
			}
			if u := c.Sender(); u != nil {
				e.Username = u.Username
				if e.Username == "" {
					e.Username = u.FirstName
				}
			}
			ctx := context.Background()
			if err := rec.Record(ctx, e); err != nil {
				logger.Error(ctx, "audit", "audit.record_failed",
					slog.String("audit_id", e.ID.String()),
					slog.String("action", action),
					slog.Any("error", err),
				)
			}
			return next(c)
		}
	}
}
