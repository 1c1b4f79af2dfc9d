package core

// RoomStore maps room identifiers to rooms. Rooms are created on first join
// and destroyed when the roster becomes empty. Not safe for concurrent use;
// the hub goroutine owns it.
type RoomStore struct {
	rooms   map[string]*Room
	maxChat int
}

// NewRoomStore constructs an empty store. maxChat bounds each room's chat log.
func NewRoomStore(maxChat int) *RoomStore {
	return &RoomStore{
		rooms:   make(map[string]*Room),
		maxChat: maxChat,
	}
}

// Join adds connID to roomID, creating the room if needed. A duplicate join
// leaves the roster untouched and reports added=false. The returned roster
// is a snapshot taken right after the append.
func (s *RoomStore) Join(roomID, connID string) (roster []string, added bool) {
	room, ok := s.rooms[roomID]
	if !ok {
		room = NewRoom(roomID, s.maxChat)
		s.rooms[roomID] = room
	}
	added = room.Add(connID)
	return room.Roster(), added
}

// Leave removes connID from roomID. When the roster becomes empty the room
// and its chat log are destroyed before Leave returns.
func (s *RoomStore) Leave(roomID, connID string) (remaining []string, removed, destroyed bool) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false, false
	}
	if !room.Remove(connID) {
		return room.Roster(), false, false
	}
	if room.Empty() {
		delete(s.rooms, roomID)
		return nil, true, true
	}
	return room.Roster(), true, false
}

// AppendChat appends an entry to the room's log. ok is false, and the entry
// dropped, when the room no longer exists.
func (s *RoomStore) AppendChat(roomID string, entry ChatEntry) (stored ChatEntry, ok bool) {
	room, exists := s.rooms[roomID]
	if !exists {
		return ChatEntry{}, false
	}
	return room.Append(entry), true
}

// Roster returns the roster of roomID in join order.
func (s *RoomStore) Roster(roomID string) ([]string, bool) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	return room.Roster(), true
}

// History returns the chat log of roomID, oldest first.
func (s *RoomStore) History(roomID string) ([]ChatEntry, bool) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	return room.History(), true
}

// Exists reports whether roomID currently exists.
func (s *RoomStore) Exists(roomID string) bool {
	_, ok := s.rooms[roomID]
	return ok
}

// Len returns the number of live rooms.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}
