package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/GautamAgrawal1/lets-connect/internal/core"
	"github.com/GautamAgrawal1/lets-connect/internal/proto"
)

// errRelayClosed is returned by the write loop when the hub drops the client.
var errRelayClosed = errors.New("relay closed connection")

// FrameMetrics counts frames the transport rejects.
type FrameMetrics interface {
	MalformedFrame()
}

type nopFrameMetrics struct{}

func (nopFrameMetrics) MalformedFrame() {}

// WSConfig tunes the websocket bridge.
type WSConfig struct {
	MaxMessageBytes    int64
	PingInterval       time.Duration
	PongTimeout        time.Duration
	RateLimitPerMinute int
	AllowedOrigins     []string
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub     *core.Hub
	cfg     WSConfig
	log     *zerolog.Logger
	metrics FrameMetrics
}

// NewWSHandler builds a new WebSocket handler. m may be nil.
func NewWSHandler(hub *core.Hub, cfg WSConfig, logger *zerolog.Logger, m FrameMetrics) *WSHandler {
	if m == nil {
		m = nopFrameMetrics{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &WSHandler{hub: hub, cfg: cfg, log: logger, metrics: m}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := h.hub.Connect()
	defer h.hub.UnregisterClient(client)

	logger := h.log.With().Str("conn_id", client.ID).Logger()
	logger.Debug().Str("remote", r.RemoteAddr).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The client learns its identifier before any relay event.
	if err := wsjson.Write(ctx, conn, helloOutbound(client.ID)); err != nil {
		logger.Warn().Err(err).Msg("write hello")
		return
	}

	if room := r.URL.Query().Get("room"); room != "" {
		client.Commands <- &core.Command{Kind: core.CommandJoinRoom, Room: room}
	}

	errCh := make(chan error, 3)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &logger)
	}()
	go func() {
		errCh <- h.heartbeat(ctx, conn)
	}()

	err = <-errCh
	cancel() // stop the other goroutines
	<-errCh
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, errRelayClosed):
		status = websocket.StatusGoingAway
		reason = err.Error()
	case err != nil && !errors.Is(err, context.Canceled):
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "connection error"
			logger.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	logger.Debug().Int("status", int(status)).Msg("ws disconnected")
	conn.Close(status, reason)
}

func (h *WSHandler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, origin := range h.cfg.AllowedOrigins {
		if origin == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
			continue
		}
		opts.OriginPatterns = append(opts.OriginPatterns, origin)
	}
	return opts
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	limiter := newRateLimiter(h.cfg.RateLimitPerMinute)
	limiter.startReset(ctx.Done())

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			logger.Debug().Msg("rate limit exceeded, frame dropped")
			continue
		}

		// A bad frame is dropped; the connection stays open.
		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.metrics.MalformedFrame()
			logger.Warn().Err(err).Msg("malformed frame dropped")
			continue
		}
		cmd, err := inboundToCommand(inbound)
		if err != nil {
			h.metrics.MalformedFrame()
			logger.Warn().Err(err).Str("type", inbound.Type).Msg("invalid frame dropped")
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-client.Stopped():
			return errRelayClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return errRelayClosed
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				logger.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// heartbeat pings the peer and fails when a pong does not arrive in time.
func (h *WSHandler) heartbeat(ctx context.Context, conn *websocket.Conn) error {
	if h.cfg.PingInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	timeout := h.cfg.PongTimeout
	if timeout <= 0 {
		timeout = h.cfg.PingInterval
	}

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
