package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomJoined acknowledges a join to the joiner with the current roster.
	EventRoomJoined EventKind = iota
	// EventUserJoined notifies room members that a connection joined.
	EventUserJoined
	// EventUserLeft notifies room members that a connection left or disconnected.
	EventUserLeft
	// EventSignal delivers a forwarded signaling payload.
	EventSignal
	// EventChat delivers a live chat message.
	EventChat
	// EventChatHistory delivers the room's chat backlog to a joiner.
	EventChatHistory
)

func (k EventKind) String() string {
	switch k {
	case EventRoomJoined:
		return "room-joined"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	case EventSignal:
		return "signal"
	case EventChat:
		return "chat"
	case EventChatHistory:
		return "chat-history"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the relay.
type Event struct {
	Kind EventKind
	Room string

	// User is the joiner for EventUserJoined, the departed connection for
	// EventUserLeft, the sender for EventSignal and the recipient itself for
	// EventRoomJoined.
	User   string
	Roster []string

	Payload json.RawMessage // EventSignal

	Chat    ChatEntry   // EventChat
	History []ChatEntry // EventChatHistory
}
