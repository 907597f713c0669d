package types

import "github.com/shopspring/decimal"

// AddOn is a priced extra attached to a ticket line item. Stored as part of
// the item's jsonb column, snapshotted at order time.
type AddOn struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
