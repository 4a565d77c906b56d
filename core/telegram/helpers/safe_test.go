package helpers

import (
	"errors"
	"strings"
	"testing"

	"github.com/kagace/melobot/core/telegram/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type sentRecord struct {
	text string
	opts *tele.SendOptions
}

// deliveryCtx fakes the subset of tele.Context that SafeSend touches.
type deliveryCtx struct {
	tele.Context

	store    map[string]interface{}
	sent     []sentRecord
	failures int
}

func newDeliveryCtx(failures int) *deliveryCtx {
	return &deliveryCtx{store: map[string]interface{}{}, failures: failures}
}

func (c *deliveryCtx) Send(what interface{}, opts ...interface{}) error {
	text, _ := what.(string)
	var so *tele.SendOptions
	for _, o := range opts {
		if v, ok := o.(*tele.SendOptions); ok {
			so = v
		}
	}
	if c.failures > 0 {
		c.failures--
		return errors.New("telegram: Bad Request: can't parse entities (400)")
	}
	c.sent = append(c.sent, sentRecord{text: text, opts: so})
	return nil
}

func (c *deliveryCtx) Get(key string) interface{}  { return c.store[key] }
func (c *deliveryCtx) Set(key string, v interface{}) { c.store[key] = v }
func (c *deliveryCtx) Update() tele.Update         { return tele.Update{ID: 1} }
func (c *deliveryCtx) Sender() *tele.User          { return &tele.User{ID: 42} }
func (c *deliveryCtx) Chat() *tele.Chat            { return &tele.Chat{ID: 42} }

func TestSafeSendDeliversFirstTry(t *testing.T) {
	c := newDeliveryCtx(0)
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}

	ok := SafeSend(c, "*hello*", opts)

	require.True(t, ok)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "*hello*", c.sent[0].text, "already-formatted text must pass through untouched")
	assert.Equal(t, opts, c.sent[0].opts)
}

func TestSafeSendTruncatesOversized(t *testing.T) {
	c := newDeliveryCtx(0)
	long := strings.Repeat("x", format.TextLimit+1)

	ok := SafeSend(c, long)

	require.True(t, ok)
	require.Len(t, c.sent, 1)
	got := []rune(c.sent[0].text)
	assert.LessOrEqual(t, len(got), format.TextLimit)
	assert.Equal(t, strings.Repeat("x", 4090)+format.Ellipsis, c.sent[0].text)
}

func TestSafeSendFallsBackToStrippedText(t *testing.T) {
	c := newDeliveryCtx(1)

	ok := SafeSend(c, "*broken [markup", &tele.SendOptions{ParseMode: tele.ModeMarkdown})

	require.True(t, ok)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "broken markup", c.sent[0].text)
	assert.Nil(t, c.sent[0].opts, "fallback must go out without a parse mode")
}

func TestSafeSendReportsFailureAfterCascade(t *testing.T) {
	c := newDeliveryCtx(2)

	ok := SafeSend(c, "*text*")

	require.False(t, ok)
	require.Len(t, c.sent, 1)
	assert.Equal(t, FailureNotice, c.sent[0].text)
}
