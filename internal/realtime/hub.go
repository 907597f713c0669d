package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
	"github.com/tablemesh/kds-backend/pkg/logger"
	"github.com/tablemesh/kds-backend/pkg/metrics"
)

// Subscriber is one connected terminal. Frames arrive on C; the channel is
// buffered and a subscriber that falls behind has frames dropped rather than
// blocking the fan-out. SSE reconnect recovers via the refetch-on-connect
// contract.
type Subscriber struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Station  *enums.Station
	C        chan []byte
}

// wants reports whether the subscriber's scope covers an event published for
// the given branch/station. Branch-wide events (nil station) reach everyone
// in the branch; station events reach branch-wide subscribers and matching
// station subscribers.
func (s *Subscriber) wants(branchID uuid.UUID, station *enums.Station) bool {
	if s.BranchID != branchID {
		return false
	}
	if station == nil || s.Station == nil {
		return true
	}
	return *s.Station == *station
}

// Hub fans events out to the terminals connected to this process. The Redis
// bridge feeds it events from every API instance.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*Subscriber
	buffer  int
	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics
}

func NewHub(buffer int, logg *logger.Logger, m *metrics.RealtimeMetrics) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		subs:    make(map[uuid.UUID]*Subscriber),
		buffer:  buffer,
		logg:    logg,
		metrics: m,
	}
}

// Subscribe registers a terminal scoped to a branch and optional station.
func (h *Hub) Subscribe(branchID uuid.UUID, station *enums.Station) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New(),
		BranchID: branchID,
		Station:  station,
		C:        make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	h.metrics.SubscriberJoined()
	return sub
}

// Unsubscribe removes the terminal and closes its channel. The close happens
// under the write lock so it cannot interleave with a Publish fan-out holding
// the read lock.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	_, present := h.subs[sub.ID]
	delete(h.subs, sub.ID)
	if present {
		close(sub.C)
	}
	h.mu.Unlock()

	if present {
		h.metrics.SubscriberLeft()
	}
}

// Publish delivers a frame to every subscriber whose scope covers the event.
// Slow consumers have the frame dropped. Sends stay under the read lock; the
// non-blocking select keeps the hold time bounded, and Unsubscribe only
// closes channels under the write lock.
func (h *Hub) Publish(ctx context.Context, branchID uuid.UUID, station *enums.Station, kind string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.wants(branchID, station) {
			continue
		}
		select {
		case sub.C <- frame:
			h.metrics.IncPublished(kind)
		default:
			h.metrics.IncDropped(kind)
			if h.logg != nil {
				dropCtx := h.logg.WithFields(ctx, map[string]any{
					"subscriber_id": sub.ID.String(),
					"branch_id":     branchID.String(),
					"kind":          kind,
				})
				h.logg.Warn(dropCtx, "realtime subscriber too slow, frame dropped")
			}
		}
	}
}

// SubscriberCount reports the number of connected terminals.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
