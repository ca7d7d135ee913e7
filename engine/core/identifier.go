package core

import (
	"sync"

	"github.com/google/uuid"
)

var onceSession sync.Once
var sessionID string

// SessionID returns a process-wide identifier attached to startup and
// swapchain lifecycle log lines so runs can be told apart in captured logs.
func SessionID() string {
	onceSession.Do(func() {
		sessionID = uuid.NewString()
	})
	return sessionID
}
