package display

import (
	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// toggle is one optimistic status flip awaiting server confirmation.
type toggle struct {
	ticketID uuid.UUID
	from     enums.ItemStatus
	to       enums.ItemStatus
}

// toggleTarget picks where a tap moves an item. Anything not ready goes to
// READY; a ready item flips back to PREPARING.
func toggleTarget(current enums.ItemStatus) enums.ItemStatus {
	if current == enums.ItemStatusReady {
		return enums.ItemStatusPreparing
	}
	return enums.ItemStatusReady
}

// BeginToggle registers a tap on an item. When the item has no mutation in
// flight, the flip is applied optimistically and the target status is
// returned for the caller to send to the server. When a mutation is already
// in flight, the tap is queued and (uuid.Nil, false) signals that nothing
// should be sent yet.
func (r *Reducer) BeginToggle(ticketID, itemID uuid.UUID) (enums.ItemStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.inFlight[itemID]; busy {
		r.pending[itemID] = append(r.pending[itemID], enums.ItemStatus(""))
		return "", false
	}

	current, ok := r.itemStatusLocked(ticketID, itemID)
	if !ok {
		return "", false
	}

	target := toggleTarget(current)
	r.inFlight[itemID] = toggle{ticketID: ticketID, from: current, to: target}
	r.setItemStatusLocked(ticketID, itemID, target)
	return target, true
}

// CompleteToggle settles the in-flight mutation for an item. A failure rolls
// the optimistic flip back. If taps queued up while this one was in flight,
// the next flip is applied and its target returned so the caller sends the
// follow-up request.
func (r *Reducer) CompleteToggle(itemID uuid.UUID, failed error) (enums.ItemStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, busy := r.inFlight[itemID]
	if !busy {
		return "", false
	}
	delete(r.inFlight, itemID)

	if failed != nil {
		r.setItemStatusLocked(current.ticketID, itemID, current.from)
		// Queued taps were aimed at a state that no longer holds.
		delete(r.pending, itemID)
		return "", false
	}

	queue := r.pending[itemID]
	if len(queue) == 0 {
		delete(r.pending, itemID)
		return "", false
	}
	r.pending[itemID] = queue[1:]
	if len(r.pending[itemID]) == 0 {
		delete(r.pending, itemID)
	}

	settled, ok := r.itemStatusLocked(current.ticketID, itemID)
	if !ok {
		return "", false
	}
	target := toggleTarget(settled)
	r.inFlight[itemID] = toggle{ticketID: current.ticketID, from: settled, to: target}
	r.setItemStatusLocked(current.ticketID, itemID, target)
	return target, true
}

// InFlight reports whether an item has an unsettled mutation.
func (r *Reducer) InFlight(itemID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.inFlight[itemID]
	return busy
}

func (r *Reducer) itemStatusLocked(ticketID, itemID uuid.UUID) (enums.ItemStatus, bool) {
	view, ok := r.byID[ticketID]
	if !ok {
		return "", false
	}
	for _, item := range view.Items {
		if item.ID == itemID {
			return item.Status, true
		}
	}
	return "", false
}
