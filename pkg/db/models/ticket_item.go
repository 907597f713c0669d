package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
	"github.com/tablemesh/kds-backend/pkg/types"
)

// TicketItem is one line of a kitchen ticket, snapshotted at placement.
type TicketItem struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TicketID     uuid.UUID           `gorm:"column:ticket_id;type:uuid;not null"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Position     int                 `gorm:"column:position;not null;default:0"`
	Name         string              `gorm:"column:name;not null"`
	Variant      *string             `gorm:"column:variant"`
	Qty          int                 `gorm:"column:qty;not null"`
	AddOns       []types.AddOn       `gorm:"column:add_ons;type:jsonb;serializer:json"`
	Instructions *string             `gorm:"column:instructions"`
	Priority     enums.OrderPriority `gorm:"column:priority;type:text;not null;default:'NORMAL'"`
	Status       enums.ItemStatus    `gorm:"column:status;type:text;not null;default:'NEW'"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
