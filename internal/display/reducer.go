package display

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/internal/realtime"
	"github.com/tablemesh/kds-backend/internal/tickets"
	"github.com/tablemesh/kds-backend/pkg/enums"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

// Reducer holds a terminal's local view of the active ticket set and folds
// realtime events into it. New-KOT events never merge incrementally: the
// reducer only raises a refetch flag and the owner pulls the full list again.
type Reducer struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]tickets.TicketView
	refetchNeeded bool

	pending  map[uuid.UUID][]enums.ItemStatus
	inFlight map[uuid.UUID]toggle

	player AlertPlayer
	logg   *logger.Logger
}

func NewReducer(player AlertPlayer, logg *logger.Logger) *Reducer {
	return &Reducer{
		byID:          make(map[uuid.UUID]tickets.TicketView),
		refetchNeeded: true,
		pending:       make(map[uuid.UUID][]enums.ItemStatus),
		inFlight:      make(map[uuid.UUID]toggle),
		player:        player,
		logg:          logg,
	}
}

// RefetchNeeded reports whether the local set is stale and must be reloaded.
func (r *Reducer) RefetchNeeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refetchNeeded
}

// OnReconnect marks the set stale. Events missed while disconnected cannot be
// replayed, so every reconnect costs one full fetch.
func (r *Reducer) OnReconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refetchNeeded = true
}

// ApplyFetch replaces the local set with a fresh server read and clears the
// refetch flag.
func (r *Reducer) ApplyFetch(views []tickets.TicketView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[uuid.UUID]tickets.TicketView, len(views))
	for _, view := range views {
		r.byID[view.ID] = view
	}
	r.refetchNeeded = false
}

// ApplyFetchError keeps the last-known-good set on screen. The refetch flag
// stays up so the owner retries.
func (r *Reducer) ApplyFetchError(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refetchNeeded = true
	if r.logg != nil {
		r.logg.Warn(ctx, "ticket refetch failed, keeping current set: "+err.Error())
	}
}

// Snapshot returns the current set in kitchen display order.
func (r *Reducer) Snapshot() []tickets.TicketView {
	r.mu.Lock()
	views := make([]tickets.TicketView, 0, len(r.byID))
	for _, view := range r.byID {
		views = append(views, view)
	}
	r.mu.Unlock()

	tickets.SortViews(views)
	return views
}

// TicketCount reports the number of tickets currently held.
func (r *Reducer) TicketCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// HandleEvent folds one realtime event into the local state.
func (r *Reducer) HandleEvent(ctx context.Context, evt realtime.Event) {
	switch evt.Kind {
	case realtime.KindTicketCreated:
		r.handleTicketCreated(ctx, evt.TicketCreated)
	case realtime.KindOrderUpdated:
		r.handleOrderUpdated(evt.OrderUpdated)
	case realtime.KindPaymentRecorded:
		r.handlePaymentRecorded(evt.PaymentRecorded)
	case realtime.KindItemStatusChange:
		r.handleItemStatus(evt.ItemStatus)
	}
}

func (r *Reducer) handleTicketCreated(ctx context.Context, payload *realtime.TicketCreatedPayload) {
	if payload == nil {
		return
	}

	r.mu.Lock()
	r.refetchNeeded = true
	r.mu.Unlock()

	if r.player != nil {
		if err := r.player.Play(ctx, ToneCount(payload.Priority)); err != nil && r.logg != nil {
			r.logg.Warn(ctx, "alert tone failed: "+err.Error())
		}
	}
}

func (r *Reducer) handleOrderUpdated(payload *realtime.OrderUpdatedPayload) {
	if payload == nil {
		return
	}
	if payload.Status.IsTerminal() {
		r.removeOrder(payload.OrderID)
		return
	}
	if payload.StaffName != nil {
		r.relabelOrder(payload.OrderID, payload.StaffName)
	}
}

// relabelOrder refreshes the ownership label after a shift handover.
func (r *Reducer) relabelOrder(orderID uuid.UUID, staffName *string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, view := range r.byID {
		if view.OrderID == orderID {
			view.StaffName = staffName
			r.byID[id] = view
		}
	}
}

func (r *Reducer) handlePaymentRecorded(payload *realtime.PaymentRecordedPayload) {
	if payload == nil || !payload.IsFullyPaid {
		return
	}
	r.removeOrder(payload.OrderID)
}

// handleItemStatus reconciles a server-confirmed item status into the local
// set. Items with an optimistic flip in flight are left alone until the
// mutation settles.
func (r *Reducer) handleItemStatus(payload *realtime.ItemStatusPayload) {
	if payload == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.inFlight[payload.ItemID]; busy {
		return
	}
	r.setItemStatusLocked(payload.TicketID, payload.ItemID, payload.Status)
}

func (r *Reducer) removeOrder(orderID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, view := range r.byID {
		if view.OrderID == orderID {
			delete(r.byID, id)
		}
	}
}

// setItemStatusLocked mutates one item line and refreshes the ticket's
// AllReady flag. Caller holds the lock.
func (r *Reducer) setItemStatusLocked(ticketID, itemID uuid.UUID, status enums.ItemStatus) {
	view, ok := r.byID[ticketID]
	if !ok {
		return
	}

	allReady := true
	for i := range view.Items {
		if view.Items[i].ID == itemID {
			view.Items[i].Status = status
		}
		if view.Items[i].Status != enums.ItemStatusReady {
			allReady = false
		}
	}
	view.AllReady = allReady
	r.byID[ticketID] = view
}
