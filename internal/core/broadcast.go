package core

// deliver queues ev for the connection id. A full queue marks the
// connection for eviction so that it never observes a gap in its room's
// event order.
func (h *Hub) deliver(id string, ev *Event) {
	c, ok := h.registry.Lookup(id)
	if !ok {
		return
	}
	if c.deliver(ev) {
		return
	}
	for _, pending := range h.evicted {
		if pending == id {
			return
		}
	}
	h.evicted = append(h.evicted, id)
}

// fanout delivers ev to every id in members except skip.
func (h *Hub) fanout(members []string, skip string, ev *Event) {
	for _, id := range members {
		if id == skip {
			continue
		}
		h.deliver(id, ev)
	}
}

func (h *Hub) join(id, room string) {
	if room == "" {
		h.log.Debug().Str("conn_id", id).Msg("join without room dropped")
		return
	}

	if current, ok := h.registry.RoomOf(id); ok {
		if current == room {
			h.log.Debug().Str("conn_id", id).Str("room", room).Msg("duplicate join ignored")
			return
		}
		h.leaveRoom(id, current)
	}

	created := !h.rooms.Exists(room)
	roster, added := h.rooms.Join(room, id)
	if !added {
		return
	}
	h.registry.SetRoom(id, room)
	h.metrics.MemberJoined()
	if created {
		h.metrics.RoomsActive(h.rooms.Len())
		h.log.Info().Str("room", room).Msg("room created")
	}
	h.log.Debug().Str("conn_id", id).Str("room", room).Int("members", len(roster)).Msg("joined room")

	// The joiner learns the roster and the backlog before any live event.
	h.deliver(id, &Event{Kind: EventRoomJoined, Room: room, User: id, Roster: roster})
	if history, ok := h.rooms.History(room); ok && len(history) > 0 {
		h.deliver(id, &Event{Kind: EventChatHistory, Room: room, History: history})
	}

	skip := id
	if h.opts.AnnounceSelf {
		skip = ""
	}
	h.fanout(roster, skip, &Event{Kind: EventUserJoined, Room: room, User: id, Roster: roster})
}

// leaveRoom removes id from room and tells the remaining members. When the
// roster empties the room is destroyed in the same step.
func (h *Hub) leaveRoom(id, room string) {
	remaining, removed, destroyed := h.rooms.Leave(room, id)
	if !removed {
		return
	}
	h.registry.SetRoom(id, "")
	h.metrics.MemberLeft()
	if destroyed {
		h.metrics.RoomsActive(h.rooms.Len())
		h.log.Info().Str("room", room).Msg("room destroyed")
		return
	}
	h.fanout(remaining, "", &Event{Kind: EventUserLeft, Room: room, User: id})
}

func (h *Hub) chat(id, name, body string) {
	room, ok := h.registry.RoomOf(id)
	if !ok {
		h.metrics.ChatDropped()
		h.log.Debug().Str("conn_id", id).Msg("chat outside a room dropped")
		return
	}
	entry, ok := h.rooms.AppendChat(room, ChatEntry{
		From:      id,
		Name:      name,
		Body:      body,
		CreatedAt: h.now(),
	})
	if !ok {
		h.metrics.ChatDropped()
		return
	}
	h.metrics.ChatPosted()

	roster, _ := h.rooms.Roster(room)
	skip := id
	if h.opts.EchoChat {
		skip = ""
	}
	h.fanout(roster, skip, &Event{Kind: EventChat, Room: room, User: id, Chat: entry})
}
