package core

import "encoding/json"

// relay forwards a signaling payload from one connection to another. The
// payload is passed through untouched. An unknown destination drops it
// without telling the sender.
func (h *Hub) relay(from, to string, payload json.RawMessage) {
	if to == "" {
		h.metrics.SignalDropped()
		return
	}
	if _, ok := h.registry.Lookup(to); !ok {
		h.metrics.SignalDropped()
		h.log.Debug().Str("from", from).Str("to", to).Msg("signal to unknown connection dropped")
		return
	}
	h.deliver(to, &Event{Kind: EventSignal, User: from, Payload: payload})
	h.metrics.SignalRelayed()
}
