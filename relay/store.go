package relay

import (
	"sync"
	"time"
)

// Store holds the most recent frame for a single channel. A new frame
// unconditionally replaces the previous one, there is no history.
type Store struct {
	channel Channel
	maxSize int
	mu      sync.RWMutex
	frame   *Frame
}

// NewStore creates an empty store. maxSize limits accepted payloads in
// bytes, zero means unlimited.
func NewStore(channel Channel, maxSize int) *Store {
	return &Store{
		channel: channel,
		maxSize: maxSize,
	}
}

// Set validates payload and stores it as the new current frame, stamped
// with the arrival time. On validation failure the previous frame stays
// untouched.
func (s *Store) Set(payload []byte) (*Frame, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if s.maxSize > 0 && len(payload) > s.maxSize {
		return nil, ErrPayloadTooLarge
	}
	frame := &Frame{
		Channel:    s.channel,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	return frame, nil
}

// Get returns the current frame, or false if nothing was uploaded yet.
// The frame pointer is immutable, readers never observe a payload and
// timestamp belonging to different uploads.
func (s *Store) Get() (*Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return nil, false
	}
	return s.frame, true
}
