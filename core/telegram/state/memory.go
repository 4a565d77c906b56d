package state

import (
	"log/slog"
	"sync"

	"github.com/kagace/melobot/core/logger"
	tghelpers "github.com/kagace/melobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// memoryManager is a mutex-guarded in-memory intent table. Map access is
// corruption-free under concurrency, but two in-flight messages from the
// same user may both observe the pending intent before either clears it.
// That race is accepted: one human types one message at a time.
type memoryManager struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewMemoryManager constructs an in-memory Manager implementation.
func NewMemoryManager() Manager {
	return &memoryManager{states: make(map[int64]State)}
}

// SetState records the pending intent for a user, overwriting any previous
// one. Selections always win, whatever the user was in the middle of.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st == StateIdle {
		delete(m.states, userID)
		return
	}
	m.states[userID] = st
}

// GetState returns the pending intent of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.states[userID]; ok {
		return st
	}
	return StateIdle
}

// ClearState removes the user's table entry entirely, so no entry survives
// a completed round-trip.
func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// HasState reports whether the user has a pending intent.
func (m *memoryManager) HasState(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[userID]
	return ok && st != StateIdle
}

// InProgress reports whether the user currently has a pending intent.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler executes the handler registered for the user's pending
// intent and clears the intent afterwards, whether the handler found a
// result, found nothing, or failed.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	handler, ok := fsmHandlers[current]
	if !ok {
		return nil
	}
	defer m.ClearState(userID)
	return handler(c)
}
