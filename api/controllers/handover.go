package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/api/responses"
	"github.com/tablemesh/kds-backend/api/validators"
	"github.com/tablemesh/kds-backend/internal/handover"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

type reassignPayload struct {
	ToStaffID uuid.UUID `json:"toStaffId" validate:"required"`
}

// HandoverMyOrders lists the caller's open orders so they can review what a
// handover would move.
func HandoverMyOrders(svc handover.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		staffID, err := staffFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orders, err := svc.ListOpenOrders(ctx, staffID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}

// HandoverStaff lists the colleagues the caller may hand their orders to.
func HandoverStaff(svc handover.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		staffID, err := staffFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		branchID, err := branchFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		staff, err := svc.ListEligibleRecipients(ctx, branchID, staffID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"staff": staff})
	}
}

// HandoverReassign moves every open order from the caller to the chosen
// recipient, all of them or none.
func HandoverReassign(svc handover.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		staffID, err := staffFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		branchID, err := branchFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload reassignPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Reassign(ctx, handover.ReassignInput{
			FromStaffID: staffID,
			ToStaffID:   payload.ToStaffID,
			BranchID:    branchID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
