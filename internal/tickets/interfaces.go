package tickets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesh/kds-backend/pkg/db/models"
	"github.com/tablemesh/kds-backend/pkg/enums"
)

// Repository defines persistence operations for the kitchen ticket tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveTickets(ctx context.Context, branchID uuid.UUID, station *enums.Station) ([]models.KitchenTicket, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrdersByIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.Order, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.TicketItem, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.TicketItem, error)
	FindTicket(ctx context.Context, ticketID uuid.UUID) (*models.KitchenTicket, error)
	CountTicketRounds(ctx context.Context, orderID uuid.UUID) (int, error)
	NextKOTNumber(ctx context.Context, branchID uuid.UUID) (int64, error)
	CreateTicket(ctx context.Context, ticket *models.KitchenTicket) (*models.KitchenTicket, error)
	CreateItems(ctx context.Context, items []models.TicketItem) error
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ItemStatus) error
	UpdateItemStatuses(ctx context.Context, itemIDs []uuid.UUID, status enums.ItemStatus) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
}
