package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GautamAgrawal1/lets-connect/internal/proto"
)

// ws_smoke connects two peers to a running relay, joins them to one room and
// checks that signaling and chat flow between them.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type peer struct {
	name string
	conn *websocket.Conn
	id   string
}

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8000/ws", "WebSocket address")
	room := flag.String("room", "smoke", "room name")
	text := flag.String("text", "hello from smoke test", "chat text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	alice, err := connect(ctx, *addr, "alice")
	if err != nil {
		return err
	}
	defer alice.conn.Close(websocket.StatusNormalClosure, "bye")

	bob, err := connect(ctx, *addr, "bob")
	if err != nil {
		return err
	}
	defer bob.conn.Close(websocket.StatusNormalClosure, "bye")

	if err := alice.send(ctx, proto.InboundTypeJoin, proto.JoinData{Room: *room}); err != nil {
		return err
	}
	if _, err := alice.await(ctx, proto.EventRoomJoined); err != nil {
		return err
	}

	if err := bob.send(ctx, proto.InboundTypeJoin, proto.JoinData{Room: *room}); err != nil {
		return err
	}
	raw, err := bob.await(ctx, proto.EventRoomJoined)
	if err != nil {
		return err
	}
	var ack proto.EventRoomJoinedData
	if err := json.Unmarshal(raw, &ack); err != nil {
		return fmt.Errorf("decode room-joined: %w", err)
	}
	fmt.Printf("bob joined %s, roster=%v\n", ack.Room, ack.Roster)

	// The newcomer offers to everyone already in the room.
	offer := json.RawMessage(`{"sdp":{"type":"offer","sdp":"v=0 smoke"}}`)
	if err := bob.send(ctx, proto.InboundTypeSignal, proto.SignalData{To: alice.id, Payload: offer}); err != nil {
		return err
	}
	raw, err = alice.await(ctx, proto.EventSignal)
	if err != nil {
		return err
	}
	var sig proto.EventSignalData
	if err := json.Unmarshal(raw, &sig); err != nil {
		return fmt.Errorf("decode signal: %w", err)
	}
	if sig.From != bob.id {
		return fmt.Errorf("signal from %s, expected %s", sig.From, bob.id)
	}
	fmt.Printf("alice got signal from bob: %s\n", sig.Payload)

	if err := alice.send(ctx, proto.InboundTypeChat, proto.ChatData{Body: *text, Name: alice.name}); err != nil {
		return err
	}
	raw, err = bob.await(ctx, proto.EventChat)
	if err != nil {
		return err
	}
	var chat proto.EventChatData
	if err := json.Unmarshal(raw, &chat); err != nil {
		return fmt.Errorf("decode chat: %w", err)
	}
	fmt.Printf("bob got chat #%d from %s: %q\n", chat.Seq, chat.Name, chat.Body)

	bob.conn.Close(websocket.StatusNormalClosure, "leaving")
	raw, err = alice.await(ctx, proto.EventUserLeft)
	if err != nil {
		return err
	}
	var left proto.EventUserLeftData
	if err := json.Unmarshal(raw, &left); err != nil {
		return fmt.Errorf("decode user-left: %w", err)
	}
	if left.ID != bob.id {
		return errors.New("user-left for the wrong peer")
	}
	fmt.Println("smoke test passed")
	return nil
}

func connect(ctx context.Context, addr, name string) (*peer, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	p := &peer{name: name, conn: conn}

	raw, err := p.await(ctx, proto.EventHello)
	if err != nil {
		conn.CloseNow()
		return nil, err
	}
	var hello proto.EventHelloData
	if err := json.Unmarshal(raw, &hello); err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("decode hello: %w", err)
	}
	p.id = hello.ID
	fmt.Printf("%s connected as %s\n", name, p.id)
	return p, nil
}

func (p *peer) send(ctx context.Context, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, p.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("%s send %s: %w", p.name, typ, err)
	}
	return nil
}

// await reads until the named event arrives and returns its data.
func (p *peer) await(ctx context.Context, event string) (json.RawMessage, error) {
	for {
		var f frame
		if err := wsjson.Read(ctx, p.conn, &f); err != nil {
			return nil, fmt.Errorf("%s waiting for %s: %w", p.name, event, err)
		}
		if f.Event == event {
			return f.Data, nil
		}
	}
}
