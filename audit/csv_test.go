package audit

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVRecorderWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()

	rec, err := NewCSVRecorder(dir, "bot_logs.csv")
	require.NoError(t, err)

	id := uuid.New()
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	require.NoError(t, rec.Record(context.Background(), Entry{
		ID:       id,
		Username: "alice",
		Action:   "Track search init",
		API:      "Telegram",
		Answer:   "Waiting track name",
		At:       at,
	}))
	require.NoError(t, rec.Close())

	rows := readRows(t, filepath.Join(dir, "bot_logs.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		id.String(), "alice", "Track search init", "Telegram",
		"2026-03-14", "15:09:26", "Waiting track name",
	}, rows[1])
}

func TestCSVRecorderAppendsWithoutDuplicateHeader(t *testing.T) {
	dir := t.TempDir()

	rec, err := NewCSVRecorder(dir, "bot_logs.csv")
	require.NoError(t, err)
	require.NoError(t, rec.Record(context.Background(), Entry{ID: uuid.New(), Username: "a", Action: ActionTyping, API: None, Answer: None, At: time.Now()}))
	require.NoError(t, rec.Close())

	rec, err = NewCSVRecorder(dir, "bot_logs.csv")
	require.NoError(t, err)
	require.NoError(t, rec.Record(context.Background(), Entry{ID: uuid.New(), Username: "b", Action: ActionTyping, API: None, Answer: None, At: time.Now()}))
	require.NoError(t, rec.Close())

	rows := readRows(t, filepath.Join(dir, "bot_logs.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "a", rows[1][1])
	assert.Equal(t, "b", rows[2][1])
}
