package handover

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesh/kds-backend/pkg/db/models"
	"github.com/tablemesh/kds-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a handover repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

var terminalOrderStatuses = []enums.OrderStatus{
	enums.OrderStatusCompleted,
	enums.OrderStatusCancelled,
}

func (r *repository) ListOpenOrdersByStaff(ctx context.Context, staffID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Where("status NOT IN ?", terminalOrderStatuses).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(orderIDs))
	if len(orderIDs) == 0 {
		return counts, nil
	}

	type row struct {
		OrderID uuid.UUID
		N       int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.TicketItem{}).
		Select("order_id, COUNT(*) AS n").
		Where("order_id IN ?", orderIDs).
		Group("order_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.OrderID] = r.N
	}
	return counts, nil
}

func (r *repository) ListActiveStaff(ctx context.Context, branchID uuid.UUID) ([]models.Staff, error) {
	var rows []models.Staff
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindStaff(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("id = ?", staffID).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// ReassignOrders moves ownership of the listed orders, guarded so a row that
// changed hands or closed since the caller read it is not silently moved.
func (r *repository) ReassignOrders(ctx context.Context, orderIDs []uuid.UUID, fromStaffID, toStaffID uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Where("staff_id = ?", fromStaffID).
		Where("status NOT IN ?", terminalOrderStatuses).
		Update("staff_id", toStaffID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
