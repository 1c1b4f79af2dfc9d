package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GautamAgrawal1/lets-connect/internal/auth"
	"github.com/GautamAgrawal1/lets-connect/internal/config"
	"github.com/GautamAgrawal1/lets-connect/internal/core"
	"github.com/GautamAgrawal1/lets-connect/internal/history"
	"github.com/GautamAgrawal1/lets-connect/internal/metrics"
	"github.com/GautamAgrawal1/lets-connect/internal/proto"
	"github.com/GautamAgrawal1/lets-connect/internal/store/sqlite"
)

type testServer struct {
	*httptest.Server
	hub     *core.Hub
	metrics *metrics.Relay
}

// startTestServer runs a hub and the full router over an in-memory store.
func startTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.PingInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	authSvc := auth.NewService(st, &auth.JWTConfig{
		Secret: []byte("test-secret"),
		Issuer: "test",
		TTL:    time.Hour,
	})
	m := metrics.New()

	hub := core.NewHub(core.Options{
		AnnounceSelf: cfg.AnnounceSelf,
		EchoChat:     cfg.EchoChat,
		ChatBacklog:  cfg.ChatBacklog,
		ClientBuffer: cfg.ClientBuffer,
	}, nil, m)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ts := httptest.NewServer(NewRouter(Deps{
		Hub:     hub,
		Auth:    authSvc,
		History: history.NewService(authSvc, st),
		Metrics: m,
		Config:  &cfg,
	}))
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-hub.Done()
	})

	return &testServer{Server: ts, hub: hub, metrics: m}
}

// wsClient is a test peer speaking the relay protocol.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dialWS(t *testing.T, ts *testServer, query string) *wsClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws" + query
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	c := &wsClient{t: t, conn: conn}
	hello := c.expect(proto.EventHello)
	var data proto.EventHelloData
	c.decode(hello, &data)
	if data.ID == "" {
		t.Fatalf("hello without id")
	}
	c.id = data.ID
	return c
}

type rawOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *wsClient) send(typ string, data any) {
	c.t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		c.t.Fatalf("write %s: %v", typ, err)
	}
}

func (c *wsClient) sendRaw(frame string) {
	c.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
		c.t.Fatalf("write raw: %v", err)
	}
}

// next reads the next outbound frame.
func (c *wsClient) next(timeout time.Duration) (rawOutbound, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out rawOutbound
	err := wsjson.Read(ctx, c.conn, &out)
	return out, err
}

// expect reads frames until one with the given event name arrives.
func (c *wsClient) expect(event string) rawOutbound {
	c.t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		out, err := c.next(time.Until(deadline))
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", event, err)
		}
		if out.Type != proto.OutboundTypeEvent {
			c.t.Fatalf("unexpected frame type %q", out.Type)
		}
		if out.Event == event {
			return out
		}
	}
	c.t.Fatalf("event %s not received", event)
	return rawOutbound{}
}

func (c *wsClient) decode(out rawOutbound, v any) {
	c.t.Helper()

	if err := json.Unmarshal(out.Data, v); err != nil {
		c.t.Fatalf("decode %s: %v", out.Event, err)
	}
}

func (c *wsClient) join(room string) proto.EventRoomJoinedData {
	c.t.Helper()

	c.send(proto.InboundTypeJoin, proto.JoinData{Room: room})
	var ack proto.EventRoomJoinedData
	c.decode(c.expect(proto.EventRoomJoined), &ack)
	return ack
}
