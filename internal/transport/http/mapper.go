package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GautamAgrawal1/lets-connect/internal/core"
	"github.com/GautamAgrawal1/lets-connect/internal/proto"
)

var (
	errUnknownType  = errors.New("unknown message type")
	errMissingField = errors.New("missing required field")
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, fmt.Errorf("decode join: %w", err)
		}
		if join.Room == "" {
			return nil, fmt.Errorf("join: room: %w", errMissingField)
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: join.Room}, nil
	case proto.InboundTypeLeave:
		var leave proto.LeaveData
		if !isEmpty(inbound.Data) {
			if err := json.Unmarshal(inbound.Data, &leave); err != nil {
				return nil, fmt.Errorf("decode leave: %w", err)
			}
		}
		return &core.Command{Kind: core.CommandLeaveRoom, Room: leave.Room}, nil
	case proto.InboundTypeSignal:
		var signal proto.SignalData
		if err := json.Unmarshal(inbound.Data, &signal); err != nil {
			return nil, fmt.Errorf("decode signal: %w", err)
		}
		if signal.To == "" {
			return nil, fmt.Errorf("signal: to: %w", errMissingField)
		}
		if isEmpty(signal.Payload) {
			return nil, fmt.Errorf("signal: payload: %w", errMissingField)
		}
		return &core.Command{Kind: core.CommandSignal, To: signal.To, Payload: signal.Payload}, nil
	case proto.InboundTypeChat:
		var chat proto.ChatData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, fmt.Errorf("decode chat: %w", err)
		}
		if chat.Body == "" {
			return nil, fmt.Errorf("chat: body: %w", errMissingField)
		}
		return &core.Command{Kind: core.CommandChat, Body: chat.Body, Name: chat.Name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, inbound.Type)
	}
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func helloOutbound(id string) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.EventHello,
		Data:  proto.EventHelloData{ID: id},
	}
}

func chatData(room string, entry core.ChatEntry) proto.EventChatData {
	return proto.EventChatData{
		Room: room,
		Seq:  entry.Seq,
		From: entry.From,
		Name: entry.Name,
		Body: entry.Body,
		TS:   entry.CreatedAt.UnixMilli(),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent}

	switch event.Kind {
	case core.EventRoomJoined:
		out.Event = proto.EventRoomJoined
		out.Data = proto.EventRoomJoinedData{
			Room:   event.Room,
			Self:   event.User,
			Roster: event.Roster,
		}
	case core.EventUserJoined:
		out.Event = proto.EventUserJoined
		out.Data = proto.EventUserJoinedData{
			Room:   event.Room,
			Joiner: event.User,
			Roster: event.Roster,
		}
	case core.EventUserLeft:
		out.Event = proto.EventUserLeft
		out.Data = proto.EventUserLeftData{
			Room: event.Room,
			ID:   event.User,
		}
	case core.EventSignal:
		out.Event = proto.EventSignal
		out.Data = proto.EventSignalData{
			From:    event.User,
			Payload: event.Payload,
		}
	case core.EventChat:
		out.Event = proto.EventChat
		out.Data = chatData(event.Room, event.Chat)
	case core.EventChatHistory:
		out.Event = proto.EventChatHistory
		messages := make([]proto.EventChatData, 0, len(event.History))
		for _, entry := range event.History {
			messages = append(messages, chatData(event.Room, entry))
		}
		out.Data = proto.EventChatHistoryData{
			Room:     event.Room,
			Messages: messages,
		}
	default:
		out.Event = event.Kind.String()
	}

	return out
}
