package core

import "testing"

func TestRegistryConnectDisconnect(t *testing.T) {
	r := NewRegistry()
	a := NewClient("a")

	if !r.Connect(a) {
		t.Fatalf("first connect should succeed")
	}
	if r.Connect(NewClient("a")) {
		t.Fatalf("duplicate id must be rejected")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Len())
	}

	if _, ok := r.RoomOf("a"); ok {
		t.Fatalf("new connection should not be in a room")
	}
	r.SetRoom("a", "lobby")
	if room, ok := r.RoomOf("a"); !ok || room != "lobby" {
		t.Fatalf("expected lobby, got %q (ok=%v)", room, ok)
	}

	c, room, ok := r.Disconnect("a")
	if !ok || c != a || room != "lobby" {
		t.Fatalf("unexpected disconnect result: %v %q %v", c, room, ok)
	}
	if _, _, ok := r.Disconnect("a"); ok {
		t.Fatalf("second disconnect must be a no-op")
	}
	if _, ok := r.Lookup("a"); ok {
		t.Fatalf("disconnected id still resolvable")
	}
}

func TestRegistrySetRoomUnknownID(t *testing.T) {
	r := NewRegistry()
	r.SetRoom("ghost", "lobby")
	if _, ok := r.RoomOf("ghost"); ok {
		t.Fatalf("unknown id must not gain a room")
	}
	if r.Len() != 0 {
		t.Fatalf("registry should stay empty")
	}
}
