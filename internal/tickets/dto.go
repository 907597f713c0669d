package tickets

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/config"
	"github.com/tablemesh/kds-backend/pkg/enums"
	"github.com/tablemesh/kds-backend/pkg/types"
)

// AgeBand is the visual urgency bucket painted by display terminals. It is
// recomputed from the clock, never persisted.
type AgeBand string

const (
	AgeBandFresh      AgeBand = "FRESH"
	AgeBandInProgress AgeBand = "IN_PROGRESS"
	AgeBandDelayed    AgeBand = "DELAYED"
)

// AgeBandFor buckets a ticket age using the configured thresholds.
func AgeBandFor(age time.Duration, cfg config.DisplayConfig) AgeBand {
	switch {
	case age < cfg.FreshUnder:
		return AgeBandFresh
	case age > cfg.DelayedOver:
		return AgeBandDelayed
	default:
		return AgeBandInProgress
	}
}

// OrderSummary is the nested order context a ticket carries to the display.
type OrderSummary struct {
	ID           uuid.UUID           `json:"id"`
	Type         enums.OrderType     `json:"type"`
	Status       enums.OrderStatus   `json:"status"`
	Priority     enums.OrderPriority `json:"priority"`
	TableNumber  *string             `json:"tableNumber,omitempty"`
	TableSection *string             `json:"tableSection,omitempty"`
	TokenNumber  *int                `json:"tokenNumber,omitempty"`
	CustomerName *string             `json:"customerName,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
}

// ItemView is one ticket line as the display consumes it.
type ItemView struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Variant      *string             `json:"variant,omitempty"`
	Qty          int                 `json:"qty"`
	AddOns       []types.AddOn       `json:"addOns,omitempty"`
	Instructions *string             `json:"instructions,omitempty"`
	Priority     enums.OrderPriority `json:"priority"`
	Status       enums.ItemStatus    `json:"status"`
}

// TicketView is the wire shape of one active KOT.
type TicketView struct {
	ID           uuid.UUID      `json:"id"`
	OrderID      uuid.UUID      `json:"orderId"`
	KOTNumber    int64          `json:"kotNumber"`
	RoundNumber  int            `json:"roundNumber"`
	RunningOrder bool           `json:"runningOrder"`
	Station      *enums.Station `json:"station,omitempty"`
	StaffName    *string        `json:"staffName,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	AgeBand      AgeBand        `json:"ageBand"`
	Order        OrderSummary   `json:"order"`
	Items        []ItemView     `json:"items"`
	AllReady     bool           `json:"allReady"`
}

// OrderDetail backs GET /orders/{id}; Mark-All discovery reads item statuses
// from here.
type OrderDetail struct {
	Order OrderSummary `json:"order"`
	Items []ItemView   `json:"items"`
}

// CreateTicketsInput carries what the order-placement collaborator sends when
// dispatching a round to the kitchen.
type CreateTicketsInput struct {
	OrderID   uuid.UUID
	BranchID  uuid.UUID
	StaffName *string
	Items     []CreateItemInput
}

// CreateItemInput is one undispatched order line with its station routing.
type CreateItemInput struct {
	Name         string              `json:"name" validate:"required"`
	Variant      *string             `json:"variant,omitempty"`
	Qty          int                 `json:"qty" validate:"required,min=1"`
	AddOns       []types.AddOn       `json:"addOns,omitempty"`
	Instructions *string             `json:"instructions,omitempty"`
	Station      *enums.Station      `json:"station,omitempty"`
	Priority     enums.OrderPriority `json:"-"`
}
