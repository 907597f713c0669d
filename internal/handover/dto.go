package handover

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablemesh/kds-backend/pkg/db/models"
	"github.com/tablemesh/kds-backend/pkg/enums"
)

// OpenOrderSummary is what the outgoing staff member reviews before handing
// off: a human label, the size of the order, and where it stands.
type OpenOrderSummary struct {
	ID        uuid.UUID         `json:"id"`
	Label     string            `json:"label"`
	Type      enums.OrderType   `json:"type"`
	Status    enums.OrderStatus `json:"status"`
	ItemCount int               `json:"itemCount"`
	Total     decimal.Decimal   `json:"total"`
}

// StaffView is a handover recipient candidate.
type StaffView struct {
	ID   uuid.UUID       `json:"id"`
	Name string          `json:"name"`
	Role enums.StaffRole `json:"role"`
}

// ReassignInput carries one handover request.
type ReassignInput struct {
	FromStaffID uuid.UUID
	ToStaffID   uuid.UUID
	BranchID    uuid.UUID
}

// ReassignResult confirms the handover to the outgoing staff member.
type ReassignResult struct {
	Count     int       `json:"count"`
	Recipient StaffView `json:"newCaptain"`
}

// orderLabel builds the display label: table reference first, then token,
// then customer name, then the bare id prefix as a last resort.
func orderLabel(order models.Order) string {
	switch {
	case order.TableNumber != nil:
		if order.TableSection != nil {
			return fmt.Sprintf("Table %s / %s", *order.TableNumber, *order.TableSection)
		}
		return fmt.Sprintf("Table %s", *order.TableNumber)
	case order.TokenNumber != nil:
		return fmt.Sprintf("Token %d", *order.TokenNumber)
	case order.CustomerName != nil:
		return *order.CustomerName
	default:
		return fmt.Sprintf("Order %.8s", order.ID.String())
	}
}
