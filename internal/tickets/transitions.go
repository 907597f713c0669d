package tickets

import (
	"github.com/tablemesh/kds-backend/pkg/enums"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
)

// allowedTransitions is the single source of truth for item lifecycle edges.
// Forward NEW -> PREPARING -> READY, the direct NEW -> READY tap (displays
// treat NEW and PREPARING both as not-ready), plus the one operator undo
// READY -> PREPARING. Going back to NEW is never legal.
var allowedTransitions = map[enums.ItemStatus][]enums.ItemStatus{
	enums.ItemStatusNew:       {enums.ItemStatusPreparing, enums.ItemStatusReady},
	enums.ItemStatusPreparing: {enums.ItemStatusReady},
	enums.ItemStatusReady:     {enums.ItemStatusPreparing},
}

// CanTransition reports whether moving from one item status to another is a
// legal lifecycle edge. Same-status is not an edge; callers treat it as an
// idempotent no-op before consulting the table.
func CanTransition(from, to enums.ItemStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a state-conflict error for illegal edges so
// every mutation path rejects them identically.
func ValidateTransition(from, to enums.ItemStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown item status").
			WithDetails(map[string]any{"status": string(to)})
	}
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "illegal item status transition").
			WithDetails(map[string]any{"from": string(from), "to": string(to)})
	}
	return nil
}
