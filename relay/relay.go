// Package relay implements the last-write-wins frame relay: one current
// frame per channel with arrival timestamps, and best-effort fan-out of
// each new frame to all connected subscribers.
package relay

import (
	"time"
)

// Limits configures the per-channel maximum payload size in bytes.
// Zero disables the check for that channel.
type Limits struct {
	MaxVideoPayload int
	MaxAudioPayload int
}

type pipeline struct {
	store *Store
	hub   *Hub
}

// Relay wires one independent {store, hub} pipeline per channel. Audio
// and video share no state: uploads, subscribers and failures on one
// channel never affect the other.
type Relay struct {
	pipelines map[Channel]*pipeline
}

func New(limits Limits) *Relay {
	return &Relay{
		pipelines: map[Channel]*pipeline{
			Video: {store: NewStore(Video, limits.MaxVideoPayload), hub: NewHub(Video)},
			Audio: {store: NewStore(Audio, limits.MaxAudioPayload), hub: NewHub(Audio)},
		},
	}
}

// Ingest validates payload, stores it as the channel's current frame and
// notifies all subscribers. Concurrent uploads race and the last Set
// wins, which is the intended behavior for a live stream.
func (r *Relay) Ingest(channel Channel, payload []byte) (time.Time, error) {
	p, ok := r.pipelines[channel]
	if !ok {
		return time.Time{}, ErrUnknownChannel
	}
	frame, err := p.store.Set(payload)
	if err != nil {
		return time.Time{}, err
	}
	log.Debugf("%s: received frame of %d bytes", channel, len(payload))
	p.hub.Publish(frame)
	return frame.ReceivedAt, nil
}

// Current returns the channel's current frame, or false when no upload
// has happened yet.
func (r *Relay) Current(channel Channel) (*Frame, bool) {
	p, ok := r.pipelines[channel]
	if !ok {
		return nil, false
	}
	return p.store.Get()
}

// Subscribe registers a new session on the channel's hub. The returned
// channel delivers at most the latest unconsumed frame; the caller must
// Unsubscribe with the returned id when its connection goes away.
func (r *Relay) Subscribe(channel Channel) (string, <-chan *Frame, error) {
	p, ok := r.pipelines[channel]
	if !ok {
		return "", nil, ErrUnknownChannel
	}
	id, frames := p.hub.Subscribe()
	return id, frames, nil
}

// Unsubscribe removes a session. Safe to call more than once.
func (r *Relay) Unsubscribe(channel Channel, id string) {
	if p, ok := r.pipelines[channel]; ok {
		p.hub.Unsubscribe(id)
	}
}

// Subscribers reports the number of active sessions on a channel.
func (r *Relay) Subscribers(channel Channel) int {
	p, ok := r.pipelines[channel]
	if !ok {
		return 0
	}
	return p.hub.Count()
}

// Close tears down all sessions on both channels. Stored frames are kept
// in memory only and vanish with the process.
func (r *Relay) Close() {
	for _, p := range r.pipelines {
		p.hub.Close()
	}
}
