package handover

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

func setupHandoverTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:handover?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	staff := `
CREATE TABLE IF NOT EXISTS staff (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
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
	for _, stmt := range []string{staff, orders, items} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertStaffRow(t *testing.T, db *gorm.DB, branchID uuid.UUID, name string, role enums.StaffRole, active bool) *models.Staff {
	t.Helper()
	member := &models.Staff{
		ID:       uuid.New(),
		BranchID: branchID,
		Name:     name,
		Role:     role,
		Active:   active,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func insertOrderRow(t *testing.T, db *gorm.DB, branchID uuid.UUID, staffID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	owner := staffID
	order := &models.Order{
		ID:       uuid.New(),
		BranchID: branchID,
		Type:     enums.OrderTypeDineIn,
		Status:   status,
		Priority: enums.OrderPriorityNormal,
		StaffID:  &owner,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestListOpenOrdersByStaffSkipsTerminal(t *testing.T) {
	db := setupHandoverTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	waiter := insertStaffRow(t, db, branchID, "Asha", enums.StaffRoleWaiter, true)
	other := insertStaffRow(t, db, branchID, "Bruno", enums.StaffRoleWaiter, true)

	open := insertOrderRow(t, db, branchID, waiter.ID, enums.OrderStatusConfirmed)
	insertOrderRow(t, db, branchID, waiter.ID, enums.OrderStatusCompleted)
	insertOrderRow(t, db, branchID, waiter.ID, enums.OrderStatusCancelled)
	insertOrderRow(t, db, branchID, other.ID, enums.OrderStatusConfirmed)

	rows, err := repo.ListOpenOrdersByStaff(ctx, waiter.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, open.ID, rows[0].ID)
}

func TestCountItemsByOrders(t *testing.T) {
	db := setupHandoverTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	waiter := insertStaffRow(t, db, branchID, "Asha", enums.StaffRoleWaiter, true)
	first := insertOrderRow(t, db, branchID, waiter.ID, enums.OrderStatusConfirmed)
	second := insertOrderRow(t, db, branchID, waiter.ID, enums.OrderStatusConfirmed)

	for i := 0; i < 3; i++ {
		item := &models.TicketItem{
			ID:       uuid.New(),
			TicketID: uuid.New(),
			OrderID:  first.ID,
			Name:     "Masala Dosa",
			Qty:      1,
			Priority: enums.OrderPriorityNormal,
			Status:   enums.ItemStatusNew,
		}
		require.NoError(t, db.Create(item).Error)
	}

	counts, err := repo.CountItemsByOrders(ctx, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[first.ID])
	assert.Zero(t, counts[second.ID])

	empty, err := repo.CountItemsByOrders(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListActiveStaffScopedToBranch(t *testing.T) {
	db := setupHandoverTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	insertStaffRow(t, db, branchID, "Zara", enums.StaffRoleCaptain, true)
	insertStaffRow(t, db, branchID, "Asha", enums.StaffRoleWaiter, true)
	insertStaffRow(t, db, branchID, "Inactive", enums.StaffRoleWaiter, false)
	insertStaffRow(t, db, uuid.New(), "Elsewhere", enums.StaffRoleWaiter, true)

	rows, err := repo.ListActiveStaff(ctx, branchID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Asha", rows[0].Name)
	assert.Equal(t, "Zara", rows[1].Name)
}

func TestReassignOrdersGuarded(t *testing.T) {
	db := setupHandoverTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	from := insertStaffRow(t, db, branchID, "Asha", enums.StaffRoleWaiter, true)
	to := insertStaffRow(t, db, branchID, "Bruno", enums.StaffRoleCaptain, true)
	stranger := insertStaffRow(t, db, branchID, "Carol", enums.StaffRoleWaiter, true)

	mine := insertOrderRow(t, db, branchID, from.ID, enums.OrderStatusConfirmed)
	closed := insertOrderRow(t, db, branchID, from.ID, enums.OrderStatusCompleted)
	theirs := insertOrderRow(t, db, branchID, stranger.ID, enums.OrderStatusConfirmed)

	moved, err := repo.ReassignOrders(ctx, []uuid.UUID{mine.ID, closed.ID, theirs.ID}, from.ID, to.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, moved)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", mine.ID).Error)
	require.NotNil(t, reloaded.StaffID)
	assert.Equal(t, to.ID, *reloaded.StaffID)

	require.NoError(t, db.First(&reloaded, "id = ?", theirs.ID).Error)
	require.NotNil(t, reloaded.StaffID)
	assert.Equal(t, stranger.ID, *reloaded.StaffID)
}
