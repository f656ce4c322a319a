package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// heartbeatInterval keeps intermediary proxies and idle browser connections
// from timing out the SSE stream.
const heartbeatInterval = 25 * time.Second

// sseHandler streams the Event Bus to a single client: a heartbeat event
// first, then every event published while the connection is open, dropped
// (never buffered or retried) if the client falls behind.
func (g *Gateway) sseHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := g.bus.Subscribe(r.Context())
	defer sub.Close()

	writeEvent(w, "heartbeat", map[string]string{"status": "connected"})
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			writeEvent(w, "heartbeat", map[string]string{"status": "alive"})
			flusher.Flush()
		case ev, open := <-sub.Events:
			if !open {
				return
			}
			writeEvent(w, ev.Name, ev.Payload)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + name + "\n"))
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
}
