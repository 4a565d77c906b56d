package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const stateAwaitingQuery State = "awaiting_query"

func TestMemoryManagerLifecycle(t *testing.T) {
	m := NewMemoryManager()

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.HasState(1))

	m.SetState(1, stateAwaitingQuery)
	assert.Equal(t, stateAwaitingQuery, m.GetState(1))
	assert.True(t, m.InProgress(1))
	assert.False(t, m.InProgress(2), "other users must be unaffected")

	m.ClearState(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.HasState(1))
}

func TestMemoryManagerSetIdleRemovesEntry(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(7, stateAwaitingQuery)
	m.SetState(7, StateIdle)
	assert.False(t, m.HasState(7))
}

func TestMemoryManagerSelectionOverwrites(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(5, stateAwaitingQuery)
	m.SetState(5, State("awaiting_other"))
	assert.Equal(t, State("awaiting_other"), m.GetState(5))
}

// Two messages from the same user may race on the pending intent; the table
// itself must stay consistent under concurrent access.
func TestMemoryManagerConcurrentAccess(t *testing.T) {
	m := NewMemoryManager()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.SetState(userID, stateAwaitingQuery)
				_ = m.GetState(userID)
				_ = m.InProgress(userID)
				m.ClearState(userID)
			}
		}(int64(i % 4))
	}
	wg.Wait()
	for id := int64(0); id < 4; id++ {
		assert.Equal(t, StateIdle, m.GetState(id))
	}
}
