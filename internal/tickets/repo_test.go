package tickets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tablemesh/kds-backend/pkg/db/models"
	"github.com/tablemesh/kds-backend/pkg/enums"
)

func setupTicketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'DINE_IN',
  status TEXT NOT NULL DEFAULT 'NEW',
  priority TEXT NOT NULL DEFAULT 'NORMAL',
  table_number TEXT,
  table_section TEXT,
  token_number INTEGER,
  customer_name TEXT,
  notes TEXT,
  staff_id TEXT,
  total TEXT NOT NULL DEFAULT '0',
  fully_paid INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	tickets := `
CREATE TABLE IF NOT EXISTS kitchen_tickets (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  kot_number INTEGER NOT NULL,
  round_number INTEGER NOT NULL DEFAULT 1,
  station TEXT,
  staff_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS ticket_items (
  id TEXT PRIMARY KEY,
  ticket_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  name TEXT NOT NULL,
  variant TEXT,
  qty INTEGER NOT NULL,
  add_ons TEXT,
  instructions TEXT,
  priority TEXT NOT NULL DEFAULT 'NORMAL',
  status TEXT NOT NULL DEFAULT 'NEW',
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{orders, tickets, items} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertOrder(t *testing.T, db *gorm.DB, branchID uuid.UUID, status enums.OrderStatus, fullyPaid bool) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:       uuid.New(),
		BranchID: branchID,
		Type:     enums.OrderTypeDineIn,
		Status:   status,
		Priority: enums.OrderPriorityNormal,
	}
	require.NoError(t, db.Create(order).Error)
	if fullyPaid {
		require.NoError(t, db.Model(order).Update("fully_paid", true).Error)
	}
	return order
}

func insertTicket(t *testing.T, db *gorm.DB, order *models.Order, kot int64, station *enums.Station, itemStatuses ...enums.ItemStatus) *models.KitchenTicket {
	t.Helper()
	ticket := &models.KitchenTicket{
		ID:          uuid.New(),
		OrderID:     order.ID,
		BranchID:    order.BranchID,
		KOTNumber:   kot,
		RoundNumber: 1,
		Station:     station,
	}
	require.NoError(t, db.Create(ticket).Error)
	for i, status := range itemStatuses {
		item := &models.TicketItem{
			ID:       uuid.New(),
			TicketID: ticket.ID,
			OrderID:  order.ID,
			Position: i,
			Name:     "dish",
			Qty:      1,
			Priority: order.Priority,
			Status:   status,
		}
		require.NoError(t, db.Create(item).Error)
	}
	return ticket
}

func TestListActiveTicketsStationFilter(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	branchID := uuid.New()

	order := insertOrder(t, db, branchID, enums.OrderStatusConfirmed, false)
	kitchen := enums.StationKitchen
	bar := enums.StationBar
	insertTicket(t, db, order, 1, &kitchen, enums.ItemStatusNew)
	barTicket := insertTicket(t, db, order, 2, &bar, enums.ItemStatusNew)

	rows, err := repo.ListActiveTickets(ctx, branchID, &bar)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, barTicket.ID, rows[0].ID)

	all, err := repo.ListActiveTickets(ctx, branchID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListActiveTicketsExcludesClosedAndPaidOrders(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	branchID := uuid.New()

	open := insertOrder(t, db, branchID, enums.OrderStatusPreparing, false)
	completed := insertOrder(t, db, branchID, enums.OrderStatusCompleted, false)
	cancelled := insertOrder(t, db, branchID, enums.OrderStatusCancelled, false)
	paid := insertOrder(t, db, branchID, enums.OrderStatusServed, true)

	keep := insertTicket(t, db, open, 1, nil, enums.ItemStatusNew)
	insertTicket(t, db, completed, 2, nil, enums.ItemStatusReady)
	insertTicket(t, db, cancelled, 3, nil, enums.ItemStatusNew)
	insertTicket(t, db, paid, 4, nil, enums.ItemStatusReady)

	rows, err := repo.ListActiveTickets(ctx, branchID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, keep.ID, rows[0].ID)
	require.Len(t, rows[0].Items, 1, "items materialized")
}

func TestListActiveTicketsScopedToBranch(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mine := insertOrder(t, db, uuid.New(), enums.OrderStatusConfirmed, false)
	other := insertOrder(t, db, uuid.New(), enums.OrderStatusConfirmed, false)
	insertTicket(t, db, mine, 1, nil, enums.ItemStatusNew)
	insertTicket(t, db, other, 1, nil, enums.ItemStatusNew)

	rows, err := repo.ListActiveTickets(ctx, mine.BranchID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].OrderID)
}

func TestNextKOTNumberPerBranch(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchA := uuid.New()
	branchB := uuid.New()

	next, err := repo.NextKOTNumber(ctx, branchA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "fresh branch starts at 1")

	order := insertOrder(t, db, branchA, enums.OrderStatusConfirmed, false)
	insertTicket(t, db, order, 7, nil)

	next, err = repo.NextKOTNumber(ctx, branchA)
	require.NoError(t, err)
	assert.Equal(t, int64(8), next)

	next, err = repo.NextKOTNumber(ctx, branchB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "numbering is per branch")
}

func TestCountTicketRounds(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := insertOrder(t, db, uuid.New(), enums.OrderStatusConfirmed, false)

	rounds, err := repo.CountTicketRounds(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, rounds)

	first := insertTicket(t, db, order, 1, nil)
	require.NoError(t, db.Model(first).Update("round_number", 1).Error)
	second := insertTicket(t, db, order, 2, nil)
	require.NoError(t, db.Model(second).Update("round_number", 2).Error)

	rounds, err = repo.CountTicketRounds(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rounds)
}

func TestUpdateItemStatusesBulk(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := insertOrder(t, db, uuid.New(), enums.OrderStatusConfirmed, false)
	ticket := insertTicket(t, db, order, 1, nil, enums.ItemStatusNew, enums.ItemStatusPreparing)

	loaded, err := repo.FindTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)

	ids := []uuid.UUID{loaded.Items[0].ID, loaded.Items[1].ID}
	require.NoError(t, repo.UpdateItemStatuses(ctx, ids, enums.ItemStatusReady))

	loaded, err = repo.FindTicket(ctx, ticket.ID)
	require.NoError(t, err)
	for _, item := range loaded.Items {
		assert.Equal(t, enums.ItemStatusReady, item.Status)
	}
}
