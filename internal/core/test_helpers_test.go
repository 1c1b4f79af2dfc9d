package core

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(opts, nil, nil)
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// nextEvent returns the next event on ch, whatever its kind.
func nextEvent(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event received")
	}
	return nil
}

func noEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %v %+v", ev.Kind, ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func waitClosed(t *testing.T, ch <-chan *Event) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("event channel not closed")
		}
	}
}

// joinRoom sends a join and waits for the acknowledgement.
func joinRoom(t *testing.T, c *Client, room string) *Event {
	t.Helper()

	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room}
	return mustEvent(t, c.Events, EventRoomJoined)
}

// waitHistory polls until the room's chat log holds at least n entries.
func waitHistory(t *testing.T, hub *Hub, room string, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if log, ok := hub.History(context.Background(), room); ok && len(log) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d chat entries", room, n)
}
