package core

import "sync"

// Default channel capacities for a client.
const (
	defaultCommandBuffer = 16
	defaultEventBuffer   = 64
)

// Client is a relay connection as seen by the core layer.
//
// The transport writes to Commands and reads from Events. Events is closed by
// the hub once the client has been removed from the registry.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	stopOnce sync.Once
	stop     chan struct{}
	doneOnce sync.Once
}

// NewClient constructs a client with the default buffer sizes.
func NewClient(id string) *Client {
	return NewClientWithBuffer(id, defaultEventBuffer)
}

// NewClientWithBuffer constructs a client whose outbound queue holds up to
// eventBuffer events before the client is considered a slow consumer.
func NewClientWithBuffer(id string, eventBuffer int) *Client {
	if eventBuffer <= 0 {
		eventBuffer = defaultEventBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, defaultCommandBuffer),
		Events:   make(chan *Event, eventBuffer),
		stop:     make(chan struct{}),
	}
}

// Stopped is closed when the client has been asked to disconnect.
func (c *Client) Stopped() <-chan struct{} {
	return c.stop
}

func (c *Client) requestStop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// closeEvents is only called from the hub goroutine.
func (c *Client) closeEvents() {
	c.doneOnce.Do(func() { close(c.Events) })
}

// deliver queues an event without blocking. It reports false when the
// client's buffer is full.
func (c *Client) deliver(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
