package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom places the client in a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom removes the client from its room.
	CommandLeaveRoom
	// CommandSignal forwards an opaque payload to another connection.
	CommandSignal
	// CommandChat posts a chat message to the client's room.
	CommandChat
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinRoom:
		return "join"
	case CommandLeaveRoom:
		return "leave"
	case CommandSignal:
		return "signal"
	case CommandChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Room is required for join. For leave it is optional; when empty the
	// room is looked up from the registry.
	Room string

	// To and Payload are used by CommandSignal. Payload is never inspected.
	To      string
	Payload json.RawMessage

	// Body and Name are used by CommandChat. Both are untrusted text.
	Body string
	Name string
}
