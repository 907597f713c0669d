package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// Staff is the identity projection used for order ownership and handover.
// Accounts and credentials live in the platform's auth service.
type Staff struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID       `gorm:"column:branch_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Role      enums.StaffRole `gorm:"column:role;type:text;not null"`
	Active    bool            `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
