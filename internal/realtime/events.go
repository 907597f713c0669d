package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// Event kinds on the wire. These are the only frames a terminal will ever
// receive; an unknown kind is a decode error, not a silent no-op.
const (
	KindTicketCreated    = "kot:new"
	KindOrderUpdated     = "order:updated"
	KindPaymentRecorded  = "payment:recorded"
	KindItemStatusChange = "ticket:item_status"
)

// TicketCreatedPayload announces a new KOT. It carries enough for terminals
// to filter by station client-side even though room scoping already applies.
// The consumer reaction is a full refetch, never an incremental merge.
type TicketCreatedPayload struct {
	OrderID     uuid.UUID           `json:"orderId"`
	TicketID    uuid.UUID           `json:"ticketId"`
	KOTNumber   int64               `json:"kotNumber"`
	RoundNumber int                 `json:"roundNumber"`
	Station     *enums.Station      `json:"station,omitempty"`
	Priority    enums.OrderPriority `json:"priority"`
}

// OrderUpdatedPayload signals an order status change. Terminal statuses mean
// local removal of that order's tickets. A handover sets StaffName so
// displays can refresh the ownership label without a refetch.
type OrderUpdatedPayload struct {
	OrderID   uuid.UUID         `json:"orderId"`
	Status    enums.OrderStatus `json:"status"`
	StaffName *string           `json:"staffName,omitempty"`
}

// PaymentRecordedPayload signals a settled payment. Fully paid orders leave
// the active set.
type PaymentRecordedPayload struct {
	OrderID     uuid.UUID `json:"orderId"`
	IsFullyPaid bool      `json:"isFullyPaid"`
}

// ItemStatusPayload is the per-item delta used to reconcile optimistic
// toggles across terminals.
type ItemStatusPayload struct {
	OrderID  uuid.UUID        `json:"orderId"`
	TicketID uuid.UUID        `json:"ticketId"`
	ItemID   uuid.UUID        `json:"itemId"`
	Status   enums.ItemStatus `json:"status"`
}

// Event is the tagged union shipped to terminals. Exactly one payload field
// is set, matching Kind.
type Event struct {
	Kind            string                  `json:"kind"`
	TicketCreated   *TicketCreatedPayload   `json:"-"`
	OrderUpdated    *OrderUpdatedPayload    `json:"-"`
	PaymentRecorded *PaymentRecordedPayload `json:"-"`
	ItemStatus      *ItemStatusPayload      `json:"-"`
}

type frame struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Encode renders the event as a wire frame.
func (e Event) Encode() ([]byte, error) {
	var data any
	switch e.Kind {
	case KindTicketCreated:
		data = e.TicketCreated
	case KindOrderUpdated:
		data = e.OrderUpdated
	case KindPaymentRecorded:
		data = e.PaymentRecorded
	case KindItemStatusChange:
		data = e.ItemStatus
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if data == nil {
		return nil, fmt.Errorf("event kind %q missing payload", e.Kind)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Kind: e.Kind, Data: raw})
}

// Decode parses a wire frame into the tagged union. Unknown kinds fail so a
// new event type cannot slip through as a silent no-op.
func Decode(raw []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Event{}, fmt.Errorf("decoding event frame: %w", err)
	}

	evt := Event{Kind: f.Kind}
	switch f.Kind {
	case KindTicketCreated:
		var p TicketCreatedPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", f.Kind, err)
		}
		evt.TicketCreated = &p
	case KindOrderUpdated:
		var p OrderUpdatedPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", f.Kind, err)
		}
		evt.OrderUpdated = &p
	case KindPaymentRecorded:
		var p PaymentRecordedPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", f.Kind, err)
		}
		evt.PaymentRecorded = &p
	case KindItemStatusChange:
		var p ItemStatusPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", f.Kind, err)
		}
		evt.ItemStatus = &p
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", f.Kind)
	}
	return evt, nil
}

// KindForEventType maps outbox event types to wire kinds.
func KindForEventType(eventType enums.OutboxEventType) (string, error) {
	switch eventType {
	case enums.EventTicketCreated:
		return KindTicketCreated, nil
	case enums.EventOrderUpdated:
		return KindOrderUpdated, nil
	case enums.EventPaymentRecorded:
		return KindPaymentRecorded, nil
	case enums.EventItemStatusChanged:
		return KindItemStatusChange, nil
	default:
		return "", fmt.Errorf("no wire kind for outbox event type %q", eventType)
	}
}
