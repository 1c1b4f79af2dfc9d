package core

// Registry is the authoritative set of live connections and the room each
// one is in. It is not safe for concurrent use; the hub goroutine owns it.
type Registry struct {
	conns map[string]*registration
}

type registration struct {
	client *Client
	room   string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*registration)}
}

// Connect registers a live connection with no room. Returns false if the id
// is already registered.
func (r *Registry) Connect(c *Client) bool {
	if _, exists := r.conns[c.ID]; exists {
		return false
	}
	r.conns[c.ID] = &registration{client: c}
	return true
}

// Disconnect removes a connection and returns the room it was in, if any.
// Calling it for an unknown id is a no-op.
func (r *Registry) Disconnect(id string) (client *Client, room string, ok bool) {
	reg, exists := r.conns[id]
	if !exists {
		return nil, "", false
	}
	delete(r.conns, id)
	return reg.client, reg.room, true
}

// Lookup returns the client registered under id.
func (r *Registry) Lookup(id string) (*Client, bool) {
	reg, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return reg.client, true
}

// RoomOf returns the room the connection is in. ok is false when the
// connection is unknown or not in a room.
func (r *Registry) RoomOf(id string) (string, bool) {
	reg, exists := r.conns[id]
	if !exists || reg.room == "" {
		return "", false
	}
	return reg.room, true
}

// SetRoom records the connection's current room. An empty room clears it.
func (r *Registry) SetRoom(id, room string) {
	if reg, ok := r.conns[id]; ok {
		reg.room = room
	}
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

// Clients returns every registered client.
func (r *Registry) Clients() []*Client {
	out := make([]*Client, 0, len(r.conns))
	for _, reg := range r.conns {
		out = append(out, reg.client)
	}
	return out
}
