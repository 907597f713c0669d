package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablemesh/kds-backend/api/middleware"
	"github.com/tablemesh/kds-backend/api/responses"
	"github.com/tablemesh/kds-backend/api/validators"
	"github.com/tablemesh/kds-backend/internal/tickets"
	"github.com/tablemesh/kds-backend/pkg/enums"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

type createTicketsPayload struct {
	Items []tickets.CreateItemInput `json:"items" validate:"required,min=1,dive"`
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

type itemStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// OrderDetail returns the order header with every dispatched item, the read
// the Mark-All flow starts from.
func OrderDetail(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID("id", chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetOrderDetail(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// CreateTickets dispatches a round of order lines to the kitchen, splitting
// them into one KOT per station.
func CreateTickets(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID("id", chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		branchID, err := branchFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createTicketsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := tickets.CreateTicketsInput{
			OrderID:  orderID,
			BranchID: branchID,
			Items:    payload.Items,
		}
		if name := middleware.StaffNameFromContext(ctx); name != "" {
			input.StaffName = &name
		}

		views, err := svc.CreateTicketsForOrder(ctx, input, actorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"tickets": views})
	}
}

// SetOrderStatus moves an order through its lifecycle. Terminal statuses pull
// the order's tickets off every display.
func SetOrderStatus(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID("id", chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload orderStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}

		if err := svc.SetOrderStatus(ctx, orderID, status, actorFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"orderId": orderID, "status": status})
	}
}

// UpdateItemStatus applies one lifecycle transition to a ticket line.
func UpdateItemStatus(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := validators.ParsePathUUID("itemId", chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload itemStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseItemStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown item status"))
			return
		}

		view, err := svc.UpdateItemStatus(ctx, tickets.UpdateItemStatusInput{
			ItemID: itemID,
			Status: status,
			Actor:  actorFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// MarkTicketReady bulk-transitions every unfinished item on a ticket.
func MarkTicketReady(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID, err := validators.ParsePathUUID("ticketId", chi.URLParam(r, "ticketId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		count, err := svc.MarkAllReady(ctx, ticketID, actorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"ticketId": ticketID, "updated": count})
	}
}
