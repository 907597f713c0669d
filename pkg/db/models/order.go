package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// Order is the kitchen-side projection of a floor order. The order lifecycle
// itself is owned by the order-placement flow; this row carries what ticket
// routing and handover need.
type Order struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID     uuid.UUID           `gorm:"column:branch_id;type:uuid;not null"`
	Type         enums.OrderType     `gorm:"column:type;type:text;not null;default:'DINE_IN'"`
	Status       enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'NEW'"`
	Priority     enums.OrderPriority `gorm:"column:priority;type:text;not null;default:'NORMAL'"`
	TableNumber  *string             `gorm:"column:table_number"`
	TableSection *string             `gorm:"column:table_section"`
	TokenNumber  *int                `gorm:"column:token_number"`
	CustomerName *string             `gorm:"column:customer_name"`
	Notes        *string             `gorm:"column:notes"`
	StaffID      *uuid.UUID          `gorm:"column:staff_id;type:uuid"`
	Total        decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	FullyPaid    bool                `gorm:"column:fully_paid;not null;default:false"`
	Tickets      []KitchenTicket     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// KitchenActive reports whether the order still belongs on kitchen displays.
func (o Order) KitchenActive() bool {
	return !o.Status.IsTerminal() && !o.FullyPaid
}
