package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin   = "join"
	InboundTypeLeave  = "leave"
	InboundTypeSignal = "signal"
	InboundTypeChat   = "chat"

	OutboundTypeEvent = "event"
)

// Outbound event names.
const (
	EventHello       = "hello"
	EventRoomJoined  = "room-joined"
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventSignal      = "signal"
	EventChat        = "chat"
	EventChatHistory = "chat-history"
)

// JoinData requests to join a room.
type JoinData struct {
	Room string `json:"room"`
}

// LeaveData leaves the current room. Room is optional; when set it must
// match the room the connection is in.
type LeaveData struct {
	Room string `json:"room,omitempty"`
}

// SignalData carries an opaque negotiation payload to one peer.
type SignalData struct {
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

// ChatData is a chat message from the client. Name is the display name the
// sender chose; the relay does not verify it.
type ChatData struct {
	Body string `json:"body"`
	Name string `json:"name"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// EventHelloData tells a fresh connection its identifier.
type EventHelloData struct {
	ID string `json:"id"`
}

// EventRoomJoinedData acknowledges a join to the joiner.
type EventRoomJoinedData struct {
	Room   string   `json:"room"`
	Self   string   `json:"self"`
	Roster []string `json:"roster"`
}

// EventUserJoinedData notifies members that a connection joined.
type EventUserJoinedData struct {
	Room   string   `json:"room"`
	Joiner string   `json:"joiner"`
	Roster []string `json:"roster"`
}

// EventUserLeftData notifies members that a connection left.
type EventUserLeftData struct {
	Room string `json:"room"`
	ID   string `json:"id"`
}

// EventSignalData delivers a relayed payload.
type EventSignalData struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// EventChatData is a single chat message.
type EventChatData struct {
	Room string `json:"room,omitempty"`
	Seq  uint64 `json:"seq"`
	From string `json:"from"`
	Name string `json:"name"`
	Body string `json:"body"`
	TS   int64  `json:"ts"`
}

// EventChatHistoryData is the backlog sent to a joiner.
type EventChatHistoryData struct {
	Room     string          `json:"room"`
	Messages []EventChatData `json:"messages"`
}
