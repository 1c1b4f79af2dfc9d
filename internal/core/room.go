package core

// Room is a named group of connections with a shared chat log.
type Room struct {
	ID      string
	roster  []string
	members map[string]struct{}
	chat    []ChatEntry
	nextSeq uint64
	maxChat int
}

// NewRoom constructs an empty room. maxChat bounds the chat log; zero keeps
// every message for the room's lifetime.
func NewRoom(id string, maxChat int) *Room {
	return &Room{
		ID:      id,
		members: make(map[string]struct{}),
		maxChat: maxChat,
	}
}

// Add appends a connection to the roster. Returns true if newly added.
func (r *Room) Add(id string) bool {
	if _, exists := r.members[id]; exists {
		return false
	}
	r.members[id] = struct{}{}
	r.roster = append(r.roster, id)
	return true
}

// Remove deletes a connection from the roster, keeping join order for the
// rest. Returns true if removed.
func (r *Room) Remove(id string) bool {
	if _, exists := r.members[id]; !exists {
		return false
	}
	delete(r.members, id)
	for i, member := range r.roster {
		if member == id {
			r.roster = append(r.roster[:i], r.roster[i+1:]...)
			break
		}
	}
	return true
}

// Roster returns a copy of the roster in join order.
func (r *Room) Roster() []string {
	out := make([]string, len(r.roster))
	copy(out, r.roster)
	return out
}

// Append adds a chat entry, stamping its sequence number.
func (r *Room) Append(entry ChatEntry) ChatEntry {
	r.nextSeq++
	entry.Seq = r.nextSeq
	r.chat = append(r.chat, entry)
	if r.maxChat > 0 && len(r.chat) > r.maxChat {
		r.chat = append(r.chat[:0:0], r.chat[len(r.chat)-r.maxChat:]...)
	}
	return entry
}

// History returns a copy of the chat log, oldest first.
func (r *Room) History() []ChatEntry {
	out := make([]ChatEntry, len(r.chat))
	copy(out, r.chat)
	return out
}

// Empty returns true if no connections are in the room.
func (r *Room) Empty() bool {
	return len(r.roster) == 0
}
