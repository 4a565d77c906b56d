package state

import tele "gopkg.in/telebot.v4"

// State identifies a pending conversation intent.
type State string

// StateIdle indicates there is no pending intent for the user. Users absent
// from the table are idle; there is no other difference between the two.
const StateIdle State = "idle"

// Manager holds at most one pending intent per user. An entry exists only
// between the selection that created it and the next text message from the
// same user; ManagerHandler removes it after dispatch regardless of outcome.
type Manager interface {
	SetState(userID int64, st State)
	GetState(userID int64) State
	HasState(userID int64) bool
	ClearState(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
