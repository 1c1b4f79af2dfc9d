package core

import "time"

// ChatEntry is one message in a room's chat log.
type ChatEntry struct {
	Seq       uint64 // arrival order within the room, starting at 1
	From      string // sender connection id, assigned by the relay
	Name      string // sender display name, client supplied
	Body      string
	CreatedAt time.Time
}
