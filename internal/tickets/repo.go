package tickets

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

// NewRepository builds a tickets repository bound to the provided DB.
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

func (r *repository) ListActiveTickets(ctx context.Context, branchID uuid.UUID, station *enums.Station) ([]models.KitchenTicket, error) {
	var rows []models.KitchenTicket
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Joins("JOIN orders ON orders.id = kitchen_tickets.order_id").
		Where("kitchen_tickets.branch_id = ?", branchID).
		Where("orders.status NOT IN ?", terminalOrderStatuses).
		Where("orders.fully_paid = ?", false)
	if station != nil {
		q = q.Where("kitchen_tickets.station = ?", *station)
	}
	err := q.Order("kitchen_tickets.created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrdersByIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.Order, error) {
	result := make(map[uuid.UUID]models.Order, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("id IN ?", orderIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

func (r *repository) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.TicketItem, error) {
	var items []models.TicketItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.TicketItem, error) {
	var item models.TicketItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindTicket(ctx context.Context, ticketID uuid.UUID) (*models.KitchenTicket, error) {
	var ticket models.KitchenTicket
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", ticketID).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) CountTicketRounds(ctx context.Context, orderID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.KitchenTicket{}).
		Select("MAX(round_number)").
		Where("order_id = ?", orderID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repository) NextKOTNumber(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var current *int64
	err := r.db.WithContext(ctx).
		Model(&models.KitchenTicket{}).
		Select("MAX(kot_number)").
		Where("branch_id = ?", branchID).
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	if current == nil {
		return 1, nil
	}
	return *current + 1, nil
}

func (r *repository) CreateTicket(ctx context.Context, ticket *models.KitchenTicket) (*models.KitchenTicket, error) {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.TicketItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.TicketItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

func (r *repository) UpdateItemStatuses(ctx context.Context, itemIDs []uuid.UUID, status enums.ItemStatus) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.TicketItem{}).
		Where("id IN ?", itemIDs).
		Update("status", status).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}
