package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagace/melobot/audit"
	tg "github.com/kagace/melobot/core/telegram"
)

type memRecorder struct {
	entries []audit.Entry
}

func (r *memRecorder) Record(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRecorder) Close() error { return nil }

func newWiredApp() (*App, *memRecorder) {
	h, _, _, _ := newHandlers()
	rec := &memRecorder{}
	app := &App{
		cfg:      &Config{},
		states:   h.States,
		reg:      tg.NewRegistry(),
		handlers: h,
		recorder: rec,
	}
	app.wire()
	return app, rec
}

func TestWireRegistersCommandsAndLabels(t *testing.T) {
	app, _ := newWiredApp()

	for _, cmd := range []string{"/start", "/help", "/stats"} {
		_, _, ok := app.reg.LookupCommand(cmd)
		assert.True(t, ok, "command %s must be registered", cmd)
	}
	labels := app.reg.ListLabels()
	require.Len(t, labels, 4)
	for _, label := range []string{LabelTrackSearch, LabelAlbumSearch, LabelVideoSearch, LabelLyricsSearch} {
		assert.Contains(t, labels, strings.ToLower(label))
	}
}

func TestWireAuditsEveryHandler(t *testing.T) {
	app, rec := newWiredApp()

	for _, cmd := range []string{"/start", "/help", "/stats"} {
		_, def, ok := app.reg.LookupCommand(cmd)
		require.True(t, ok)
		require.NoError(t, def.Handler(newChatCtx(42, cmd)))
	}
	for _, label := range []string{LabelTrackSearch, LabelAlbumSearch, LabelVideoSearch, LabelLyricsSearch} {
		_, h, ok := app.reg.LookupLabel(label)
		require.True(t, ok)
		require.NoError(t, h(newChatCtx(42, label)))
	}

	require.Len(t, rec.entries, 7, "each handled update must leave exactly one audit record")

	actions := make([]string, 0, len(rec.entries))
	for _, e := range rec.entries {
		actions = append(actions, e.Action)
		assert.Equal(t, "tester", e.Username)
	}
	assert.Contains(t, actions, "Stats command")
	assert.Contains(t, actions, "Track search init")
}