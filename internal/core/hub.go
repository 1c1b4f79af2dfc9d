package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/GautamAgrawal1/lets-connect/internal/utils"
)

const defaultInboxSize = 256

// Options tune relay behavior.
type Options struct {
	// AnnounceSelf also sends user-joined to the joiner itself.
	AnnounceSelf bool
	// EchoChat also delivers a chat message back to its sender.
	EchoChat bool
	// ChatBacklog bounds each room's chat log. Zero keeps everything.
	ChatBacklog int
	// ClientBuffer is the outbound event queue size per client.
	ClientBuffer int
	// InboxSize is the capacity of the hub's request queue.
	InboxSize int
}

type requestKind int

const (
	requestRegister requestKind = iota
	requestUnregister
	requestCommand
	requestQuery
)

type request struct {
	kind   requestKind
	client *Client
	id     string
	cmd    *Command
	query  func()
}

// Hub is the relay server. A single goroutine started by Run owns the
// connection registry and the room store; every mutation and every read of
// that state is submitted to it through one queue and applied in order.
type Hub struct {
	opts     Options
	log      zerolog.Logger
	metrics  Metrics
	now      func() time.Time
	registry *Registry
	rooms    *RoomStore

	inbox   chan request
	done    chan struct{}
	evicted []string
}

// NewHub creates a relay hub. logger and m may be nil.
func NewHub(opts Options, logger *zerolog.Logger, m Metrics) *Hub {
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = defaultEventBuffer
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "hub").Logger()
	}
	if m == nil {
		m = nopMetrics{}
	}
	return &Hub{
		opts:     opts,
		log:      l,
		metrics:  m,
		now:      time.Now,
		registry: NewRegistry(),
		rooms:    NewRoomStore(opts.ChatBacklog),
		inbox:    make(chan request, opts.InboxSize),
		done:     make(chan struct{}),
	}
}

// Run processes requests until ctx is canceled. On return every client has
// been disconnected and its Events channel closed.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info().Msg("hub started")
	for {
		select {
		case req := <-h.inbox:
			h.handle(req)
			h.flushEvictions()
		case <-ctx.Done():
			h.shutdown()
			h.log.Info().Msg("hub stopped")
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Connect allocates a fresh connection identifier, registers the client and
// returns it.
func (h *Hub) Connect() *Client {
	c := NewClientWithBuffer(utils.NewID(), h.opts.ClientBuffer)
	h.RegisterClient(c)
	return c
}

// RegisterClient adds a client to the registry and starts forwarding its
// Commands to the hub. Commands are applied in the order they were sent.
func (h *Hub) RegisterClient(c *Client) {
	if err := h.submit(context.Background(), request{kind: requestRegister, client: c}); err != nil {
		c.requestStop()
		c.closeEvents()
		return
	}
	go h.pump(c)
}

// UnregisterClient disconnects a client. Commands it already queued are
// applied first. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	c.requestStop()
}

// Disconnect removes the connection with the given id. Unknown or already
// removed ids are ignored.
func (h *Hub) Disconnect(ctx context.Context, id string) error {
	return h.submit(ctx, request{kind: requestUnregister, id: id})
}

// RoomOf returns the room a connection is currently in.
func (h *Hub) RoomOf(ctx context.Context, id string) (room string, ok bool) {
	if err := h.query(ctx, func() { room, ok = h.registry.RoomOf(id) }); err != nil {
		return "", false
	}
	return room, ok
}

// Roster returns the members of a room in join order. ok is false when the
// room does not exist.
func (h *Hub) Roster(ctx context.Context, room string) (roster []string, ok bool) {
	if err := h.query(ctx, func() { roster, ok = h.rooms.Roster(room) }); err != nil {
		return nil, false
	}
	return roster, ok
}

// History returns a room's chat log, oldest first.
func (h *Hub) History(ctx context.Context, room string) (log []ChatEntry, ok bool) {
	if err := h.query(ctx, func() { log, ok = h.rooms.History(room) }); err != nil {
		return nil, false
	}
	return log, ok
}

// Stats is a point-in-time view of the relay.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// Stats returns connection and room counts.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := h.query(ctx, func() {
		st = Stats{Connections: h.registry.Len(), Rooms: h.rooms.Len()}
	})
	return st, err
}

func (h *Hub) submit(ctx context.Context, req request) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.inbox <- req:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	err := h.submit(ctx, request{kind: requestQuery, query: func() {
		fn()
		close(finished)
	}})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pump forwards a client's commands into the hub queue. Once the client is
// stopped it drains what is already queued and then submits the disconnect.
func (h *Hub) pump(c *Client) {
	ctx := context.Background()
	for {
		select {
		case cmd := <-c.Commands:
			if h.submit(ctx, request{kind: requestCommand, client: c, cmd: cmd}) != nil {
				return
			}
		case <-c.stop:
			for {
				select {
				case cmd := <-c.Commands:
					if h.submit(ctx, request{kind: requestCommand, client: c, cmd: cmd}) != nil {
						return
					}
				default:
					_ = h.submit(ctx, request{kind: requestUnregister, id: c.ID, client: c})
					return
				}
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handle(req request) {
	switch req.kind {
	case requestRegister:
		h.register(req.client)
	case requestUnregister:
		if req.client != nil {
			if current, ok := h.registry.Lookup(req.id); !ok || current != req.client {
				return
			}
		}
		h.disconnect(req.id)
	case requestCommand:
		h.dispatch(req.client, req.cmd)
	case requestQuery:
		req.query()
	}
}

func (h *Hub) register(c *Client) {
	if !h.registry.Connect(c) {
		h.log.Warn().Str("conn_id", c.ID).Msg("duplicate connection id, closing")
		c.requestStop()
		c.closeEvents()
		return
	}
	h.metrics.ConnectionOpened()
	h.log.Debug().Str("conn_id", c.ID).Msg("connection registered")
}

func (h *Hub) disconnect(id string) {
	client, room, ok := h.registry.Disconnect(id)
	if !ok {
		return
	}
	client.requestStop()
	client.closeEvents()
	h.metrics.ConnectionClosed()
	if room != "" {
		h.leaveRoom(id, room)
	}
	h.log.Debug().Str("conn_id", id).Str("room", room).Msg("connection removed")
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	if cmd == nil {
		return
	}
	// Commands racing a disconnect arrive after the client is gone.
	if current, ok := h.registry.Lookup(c.ID); !ok || current != c {
		h.log.Debug().Str("conn_id", c.ID).Stringer("cmd", cmd.Kind).Msg("command from unknown connection dropped")
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.join(c.ID, cmd.Room)
	case CommandLeaveRoom:
		h.leave(c.ID, cmd.Room)
	case CommandSignal:
		h.relay(c.ID, cmd.To, cmd.Payload)
	case CommandChat:
		h.chat(c.ID, cmd.Name, cmd.Body)
	default:
		h.log.Warn().Str("conn_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command kind")
	}
}

func (h *Hub) leave(id, room string) {
	current, ok := h.registry.RoomOf(id)
	if !ok {
		return
	}
	if room != "" && room != current {
		return
	}
	h.leaveRoom(id, current)
}

func (h *Hub) flushEvictions() {
	for len(h.evicted) > 0 {
		id := h.evicted[0]
		h.evicted = h.evicted[1:]
		if _, ok := h.registry.Lookup(id); !ok {
			continue
		}
		h.log.Warn().Str("conn_id", id).Msg("slow consumer evicted")
		h.metrics.ClientEvicted()
		h.disconnect(id)
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for _, c := range h.registry.Clients() {
		_, room, _ := h.registry.Disconnect(c.ID)
		if room != "" {
			h.metrics.MemberLeft()
		}
		h.metrics.ConnectionClosed()
		c.requestStop()
		c.closeEvents()
	}
	h.rooms = NewRoomStore(h.opts.ChatBacklog)
	h.metrics.RoomsActive(0)
	for {
		select {
		case req := <-h.inbox:
			if req.kind == requestRegister {
				req.client.requestStop()
				req.client.closeEvents()
			}
		default:
			return
		}
	}
}
