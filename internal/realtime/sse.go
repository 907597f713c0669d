package realtime

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/config"
	"github.com/tablemesh/kds-backend/pkg/enums"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

// StreamHandler serves the terminal event stream. The join parameters ride
// on every connect (branch from the token claims, station from the query),
// so an SSE reconnect re-announces room membership by construction.
type StreamHandler struct {
	hub  *Hub
	cfg  config.RealtimeConfig
	logg *logger.Logger
}

func NewStreamHandler(hub *Hub, cfg config.RealtimeConfig, logg *logger.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, cfg: cfg, logg: logg}
}

// Serve attaches the terminal to its rooms and streams frames until the
// client goes away.
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request, branchID uuid.UUID, station *enums.Station) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(branchID, station)
	defer h.hub.Unsubscribe(sub)

	ctx := r.Context()
	if h.logg != nil {
		ctx = h.logg.WithField(ctx, "subscriber_id", sub.ID.String())
		ctx = h.logg.WithBranchID(ctx, branchID.String())
		if station != nil {
			ctx = h.logg.WithStation(ctx, station.String())
		}
		h.logg.Info(ctx, "terminal connected")
	}

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: %d\n\n", h.cfg.RetryHintMS)
	flusher.Flush()

	keepalive := time.NewTicker(h.cfg.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			if h.logg != nil {
				h.logg.Info(ctx, "terminal disconnected")
			}
			return

		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()

		case frame, open := <-sub.C:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}
}
