// Package server exposes the relay over HTTP: raw-body upload endpoints
// for the producer and long-lived streaming endpoints (SSE, MJPEG,
// websocket) for browser clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"strzcam.com/camrelay/relay"
)

var log = logging.Logger("server")

type Server struct {
	relay  *relay.Relay
	config Config
	mux    *http.ServeMux
	http   *http.Server
}

func New(r *relay.Relay, config Config) *Server {
	return &Server{
		relay:  r,
		config: config,
		mux:    http.NewServeMux(),
	}
}

func (s *Server) PrepareEndpoints() {
	s.mux.HandleFunc("POST /upload", s.upload(relay.Video))
	s.mux.HandleFunc("POST /upload-audio", s.upload(relay.Audio))

	s.mux.HandleFunc("GET /video-stream", s.serveEvents(relay.Video))
	s.mux.HandleFunc("GET /audio-stream", s.serveEvents(relay.Audio))
	s.mux.HandleFunc("GET /stream", s.serveStream)
	s.mux.HandleFunc("GET /ws/{channel}", s.serveWebsocket)

	s.mux.HandleFunc("GET /status", s.serveStatus)
	s.mux.HandleFunc("GET /{$}", s.serveIndex)
}

// Handler returns the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.http = &http.Server{Addr: s.config.Addr, Handler: s.mux}
	log.Infof("listening on %s", s.config.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and closes all relay sessions, which
// unblocks every streaming handler.
func (s *Server) Shutdown(ctx context.Context) error {
	s.relay.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) upload(channel relay.Channel) http.HandlerFunc {
	maxPayload := s.config.MaxVideoPayload
	if channel == relay.Audio {
		maxPayload = s.config.MaxAudioPayload
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(maxPayload) + 1
		body, err := io.ReadAll(io.LimitReader(r.Body, limit))
		if err != nil {
			http.Error(w, "Read failed", http.StatusBadRequest)
			return
		}
		_, err = s.relay.Ingest(channel, body)
		switch {
		case errors.Is(err, relay.ErrEmptyPayload):
			http.Error(w, "No data", http.StatusBadRequest)
			return
		case errors.Is(err, relay.ErrPayloadTooLarge):
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		case err != nil:
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

type channelStatus struct {
	Status      string `json:"status"`
	LastFrame   string `json:"last_frame"`
	Subscribers int    `json:"subscribers"`
}

func (s *Server) channelStatus(channel relay.Channel, expiry time.Duration) channelStatus {
	status := channelStatus{
		Status:      "No frames received yet",
		LastFrame:   "Never",
		Subscribers: s.relay.Subscribers(channel),
	}
	frame, ok := s.relay.Current(channel)
	if !ok {
		return status
	}
	status.LastFrame = frame.ReceivedAt.Format("15:04:05")
	if age := frame.Age(); age > expiry {
		status.Status = fmt.Sprintf("Offline (last frame %ds ago)", int(age.Seconds()))
	} else {
		status.Status = "Online"
	}
	return status
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]channelStatus{
		"video": s.channelStatus(relay.Video, s.config.VideoExpiry),
		"audio": s.channelStatus(relay.Audio, s.config.AudioExpiry),
	})
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexHTML))
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
