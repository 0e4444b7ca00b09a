package relay

import (
	"sync"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("relay")

// Hub fans a new frame out to every subscribed session of one channel.
// Each subscriber owns a single-slot frame channel: when the subscriber
// lags behind, the pending frame is replaced by the newer one. Nobody
// queues and a slow subscriber never blocks the producer or its peers.
type Hub struct {
	channel     Channel
	mu          sync.RWMutex
	subscribers map[string]chan *Frame
	closed      bool
}

func NewHub(channel Channel) *Hub {
	return &Hub{
		channel:     channel,
		subscribers: make(map[string]chan *Frame),
	}
}

// Subscribe registers a new session and returns its id together with the
// channel its frames arrive on. The channel is closed by Unsubscribe or
// Close; after Close new subscribers get an already-closed channel.
func (h *Hub) Subscribe() (string, <-chan *Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan *Frame)
		close(ch)
		return "", ch
	}

	id := uuid.NewString()
	ch := make(chan *Frame, 1)
	h.subscribers[id] = ch
	log.Infof("%s: subscriber %s connected, total %d", h.channel, id, len(h.subscribers))
	return id, ch
}

// Unsubscribe removes a session and closes its frame channel. Calling it
// again, or with an id that never registered, is a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
		log.Infof("%s: subscriber %s disconnected, remaining %d", h.channel, id, len(h.subscribers))
	}
}

// Publish delivers frame to every current subscriber. A subscriber whose
// slot is still occupied has the stale frame swapped for this one.
func (h *Hub) Publish(frame *Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, ch := range h.subscribers {
		select {
		case ch <- frame:
		default:
			// slot occupied, drop the unconsumed frame
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close tears down all sessions. Publish and Subscribe become no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
	log.Infof("%s: hub closed", h.channel)
}
