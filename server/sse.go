package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"strzcam.com/camrelay/relay"
)

// frameEvent is one SSE payload: the frame bytes in base64 plus the
// arrival time in unix milliseconds so the browser can judge staleness.
type frameEvent struct {
	Payload    string `json:"payload"`
	ReceivedAt int64  `json:"received_at"`
}

// serveEvents streams a channel as Server-Sent Events. A client that
// connects while a frame is already stored receives it right away, then
// one event per broadcast frame until it disconnects.
func (s *Server) serveEvents(channel relay.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		id, frames, err := s.relay.Subscribe(channel)
		if err != nil {
			http.Error(w, "Unknown channel", http.StatusNotFound)
			return
		}
		defer s.relay.Unsubscribe(channel, id)

		if frame, ok := s.relay.Current(channel); ok {
			if err := writeFrameEvent(w, frame); err != nil {
				return
			}
		}
		flusher.Flush()

		keepalive := time.NewTicker(s.config.Heartbeat)
		defer keepalive.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-frames:
				if !ok {
					return
				}
				if err := writeFrameEvent(w, frame); err != nil {
					log.Debugf("%s: dropping subscriber %s: %v", channel, id, err)
					return
				}
				flusher.Flush()
			case <-keepalive.C:
				// comment line, keeps proxies from timing out the stream
				if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeFrameEvent(w io.Writer, frame *relay.Frame) error {
	event := frameEvent{
		Payload:    base64.StdEncoding.EncodeToString(frame.Payload),
		ReceivedAt: frame.ReceivedAt.UnixMilli(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
