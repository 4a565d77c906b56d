// Package state tracks the single pending conversation intent per Telegram
// user and dispatches the fulfilling text message to the handler registered
// for that intent. It is domain-agnostic so it can be reused across bots.
package state
