package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// KitchenTicket is one KOT routed to a station display. An order yields one
// ticket per station per round; round 2+ marks a running order.
type KitchenTicket struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID      `gorm:"column:order_id;type:uuid;not null"`
	BranchID    uuid.UUID      `gorm:"column:branch_id;type:uuid;not null"`
	KOTNumber   int64          `gorm:"column:kot_number;not null"`
	RoundNumber int            `gorm:"column:round_number;not null;default:1"`
	Station     *enums.Station `gorm:"column:station;type:text"`
	StaffName   *string        `gorm:"column:staff_name"`
	Items       []TicketItem   `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// RunningOrder reports whether the ticket is a later round for an
// already-served table.
func (t KitchenTicket) RunningOrder() bool {
	return t.RoundNumber >= 2
}
