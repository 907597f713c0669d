package handover

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesh/kds-backend/pkg/db/models"
)

// Repository defines persistence operations for handover.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListOpenOrdersByStaff(ctx context.Context, staffID uuid.UUID) ([]models.Order, error)
	CountItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]int, error)
	ListActiveStaff(ctx context.Context, branchID uuid.UUID) ([]models.Staff, error)
	FindStaff(ctx context.Context, staffID uuid.UUID) (*models.Staff, error)
	ReassignOrders(ctx context.Context, orderIDs []uuid.UUID, fromStaffID, toStaffID uuid.UUID) (int64, error)
}
