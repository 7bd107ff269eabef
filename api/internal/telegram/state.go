package telegram

import "sync"

// inFlight marks chats with an explanation in progress; a chat gets one at a time.
var inFlight sync.Map // chatID -> struct{}

func tryStart(chatID int64) bool {
	_, busy := inFlight.LoadOrStore(chatID, struct{}{})
	return !busy
}

func finish(chatID int64) { inFlight.Delete(chatID) }
