package controllers

import (
	"net/http"

	"github.com/tablemesh/kds-backend/api/responses"
	"github.com/tablemesh/kds-backend/api/validators"
	"github.com/tablemesh/kds-backend/internal/realtime"
	"github.com/tablemesh/kds-backend/internal/tickets"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

// KDSOrders lists the active tickets for the caller's branch, newest-priority
// first, optionally filtered to one station.
func KDSOrders(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		branchID, err := branchFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		station, err := validators.ParseQueryStation(r, "station")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		views, err := svc.ListActive(ctx, branchID, station)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"tickets": views})
	}
}

// KDSStream attaches a display terminal to the realtime feed. The branch
// comes from token claims; a reconnecting terminal re-issues this request and
// must refetch the list afterwards.
func KDSStream(stream *realtime.StreamHandler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		branchID, err := branchFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		station, err := validators.ParseQueryStation(r, "station")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		stream.Serve(w, r, branchID, station)
	}
}
