package realtime

import (
	"net/http"
	"strings"
	"time"
)

const ssePingPeriod = 30 * time.Second

// ServeSSE streams hub messages to a read-only spectator. The subscriber
// must already be registered on hub; initial frames are written first.
// Returns when the client goes away or the hub closes.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, sub *Subscriber, initial ...Message) {
	defer hub.Unregister(sub)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	for _, msg := range initial {
		if _, err := w.Write(formatSSEMessage(string(msg.Type), string(msg.Payload))); err != nil {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(ssePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.Send:
			if !ok {
				return
			}
			if _, err := w.Write(formatSSEMessage(string(msg.Type), string(msg.Payload))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage renders one event. Multi-line data becomes one data:
// line per input line.
func formatSSEMessage(event, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
