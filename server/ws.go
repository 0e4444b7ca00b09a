package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"strzcam.com/camrelay/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveWebsocket streams a channel as binary websocket messages, for
// clients that prefer raw frames over base64 events. Same delivery
// contract as the SSE endpoints: current frame first, latest-wins after.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	channel, err := relay.ParseChannel(r.PathValue("channel"))
	if err != nil {
		http.Error(w, "Unknown channel", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("%s: websocket upgrade failed: %v", channel, err)
		return
	}
	defer conn.Close()

	id, frames, err := s.relay.Subscribe(channel)
	if err != nil {
		return
	}
	defer s.relay.Unsubscribe(channel, id)

	// read loop exists only to notice the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if frame, ok := s.relay.Current(channel); ok {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame.Payload); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, frame.Payload); err != nil {
				log.Debugf("%s: dropping websocket subscriber %s: %v", channel, id, err)
				return
			}
		}
	}
}
