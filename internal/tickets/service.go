package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesh/kds-backend/pkg/config"
	dbpkg "github.com/tablemesh/kds-backend/pkg/db"
	"github.com/tablemesh/kds-backend/pkg/db/models"
	"github.com/tablemesh/kds-backend/pkg/enums"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/logger"
	"github.com/tablemesh/kds-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the kitchen ticket operations behind the display surface.
type Service interface {
	ListActive(ctx context.Context, branchID uuid.UUID, station *enums.Station) ([]TicketView, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*ItemView, error)
	MarkAllReady(ctx context.Context, ticketID uuid.UUID, actor *outbox.ActorRef) (int, error)
	CreateTicketsForOrder(ctx context.Context, input CreateTicketsInput, actor *outbox.ActorRef) ([]TicketView, error)
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor *outbox.ActorRef) error
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID) error
}

// UpdateItemStatusInput carries one item transition request.
type UpdateItemStatusInput struct {
	ItemID uuid.UUID
	Status enums.ItemStatus
	Actor  *outbox.ActorRef
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxEmitter
	display config.DisplayConfig
	logg    *logger.Logger
	nowFn   func() time.Time
}

// NewService builds a tickets service with the required dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxEmitter, display config.DisplayConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tickets repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  emitter,
		display: display,
		logg:    logg,
		nowFn:   time.Now,
	}, nil
}

func (s *service) ListActive(ctx context.Context, branchID uuid.UUID, station *enums.Station) ([]TicketView, error) {
	rows, err := s.repo.ListActiveTickets(ctx, branchID, station)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing active tickets")
	}

	orderIDs := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		if !seen[row.OrderID] {
			seen[row.OrderID] = true
			orderIDs = append(orderIDs, row.OrderID)
		}
	}

	orders, err := s.repo.FindOrdersByIDs(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ticket orders")
	}

	now := s.nowFn()
	views := make([]TicketView, 0, len(rows))
	for _, row := range rows {
		order, ok := orders[row.OrderID]
		if !ok {
			continue
		}
		views = append(views, s.buildView(row, order, now))
	}

	SortViews(views)
	return views, nil
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}

	items, err := s.repo.FindOrderItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order items")
	}

	detail := &OrderDetail{
		Order: summarize(*order),
		Items: make([]ItemView, 0, len(items)),
	}
	for _, item := range items {
		detail.Items = append(detail.Items, itemView(item))
	}
	return detail, nil
}

func (s *service) UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*ItemView, error) {
	item, err := s.repo.FindItem(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading item")
	}

	if err := ValidateTransition(item.Status, input.Status); err != nil {
		return nil, err
	}

	// Idempotent: nothing to mutate, nothing to announce.
	if item.Status == input.Status {
		view := itemView(*item)
		return &view, nil
	}

	ticket, err := s.repo.FindTicket(ctx, item.TicketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ticket")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateItemStatus(ctx, item.ID, input.Status); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemStatusChanged,
			AggregateType: enums.AggregateTicket,
			AggregateID:   ticket.ID,
			BranchID:      ticket.BranchID,
			Station:       ticket.Station,
			Actor:         input.Actor,
			Data: map[string]any{
				"orderId":  item.OrderID,
				"ticketId": ticket.ID,
				"itemId":   item.ID,
				"status":   input.Status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating item status")
	}

	item.Status = input.Status
	view := itemView(*item)
	return &view, nil
}

func (s *service) MarkAllReady(ctx context.Context, ticketID uuid.UUID, actor *outbox.ActorRef) (int, error) {
	ticket, err := s.repo.FindTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ticket")
	}

	pending := make([]models.TicketItem, 0, len(ticket.Items))
	for _, item := range ticket.Items {
		if item.Status != enums.ItemStatusReady {
			pending = append(pending, item)
		}
	}

	// Idempotent: all items already READY means zero mutations.
	if len(pending) == 0 {
		return 0, nil
	}

	pendingIDs := make([]uuid.UUID, 0, len(pending))
	for _, item := range pending {
		pendingIDs = append(pendingIDs, item.ID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateItemStatuses(ctx, pendingIDs, enums.ItemStatusReady); err != nil {
			return err
		}
		for _, item := range pending {
			event := outbox.DomainEvent{
				EventType:     enums.EventItemStatusChanged,
				AggregateType: enums.AggregateTicket,
				AggregateID:   ticket.ID,
				BranchID:      ticket.BranchID,
				Station:       ticket.Station,
				Actor:         actor,
				Data: map[string]any{
					"orderId":  item.OrderID,
					"ticketId": ticket.ID,
					"itemId":   item.ID,
					"status":   enums.ItemStatusReady,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking items ready")
	}

	return len(pending), nil
}

func (s *service) CreateTicketsForOrder(ctx context.Context, input CreateTicketsInput, actor *outbox.ActorRef) ([]TicketView, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to dispatch")
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed")
	}

	groups, stations := groupByStation(input.Items)

	var created []models.KitchenTicket
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		prior, err := txRepo.CountTicketRounds(ctx, order.ID)
		if err != nil {
			return err
		}
		round := prior + 1

		kot, err := txRepo.NextKOTNumber(ctx, order.BranchID)
		if err != nil {
			return err
		}

		for _, station := range stations {
			ticket := &models.KitchenTicket{
				ID:          uuid.New(),
				OrderID:     order.ID,
				BranchID:    order.BranchID,
				KOTNumber:   kot,
				RoundNumber: round,
				Station:     station.ptr(),
				StaffName:   input.StaffName,
			}
			kot++

			if _, err := txRepo.CreateTicket(ctx, ticket); err != nil {
				return err
			}

			items := make([]models.TicketItem, 0, len(groups[station]))
			for pos, in := range groups[station] {
				items = append(items, models.TicketItem{
					ID:           uuid.New(),
					TicketID:     ticket.ID,
					OrderID:      order.ID,
					Position:     pos,
					Name:         in.Name,
					Variant:      in.Variant,
					Qty:          in.Qty,
					AddOns:       in.AddOns,
					Instructions: in.Instructions,
					Priority:     order.Priority,
					Status:       enums.ItemStatusNew,
				})
			}
			if err := txRepo.CreateItems(ctx, items); err != nil {
				return err
			}
			ticket.Items = items

			event := outbox.DomainEvent{
				EventType:     enums.EventTicketCreated,
				AggregateType: enums.AggregateTicket,
				AggregateID:   ticket.ID,
				BranchID:      order.BranchID,
				Station:       ticket.Station,
				Actor:         actor,
				Data: map[string]any{
					"orderId":     order.ID,
					"ticketId":    ticket.ID,
					"kotNumber":   ticket.KOTNumber,
					"roundNumber": ticket.RoundNumber,
					"station":     ticket.Station,
					"priority":    order.Priority,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}

			created = append(created, *ticket)
		}
		return nil
	})
	if err != nil {
		// Two dispatches racing on the next KOT number trip the per-branch
		// unique index; the loser retries and claims the following number.
		if dbpkg.IsUniqueViolation(err, "ux_kitchen_tickets_branch_kot") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "kot number already claimed, retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating tickets")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"tickets":  len(created),
		})
		s.logg.Info(logCtx, "kitchen tickets dispatched")
	}

	now := s.nowFn()
	views := make([]TicketView, 0, len(created))
	for _, ticket := range created {
		views = append(views, s.buildView(ticket, *order, now))
	}
	return views, nil
}

func (s *service) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor *outbox.ActorRef) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}

	if order.Status == status {
		return nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateOrder(ctx, orderID, map[string]any{"status": status}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			BranchID:      order.BranchID,
			Actor:         actor,
			Data: map[string]any{
				"orderId": orderID,
				"status":  status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}
	return nil
}

func (s *service) MarkOrderPaid(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}

	if order.FullyPaid {
		return nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateOrder(ctx, orderID, map[string]any{"fully_paid": true}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			BranchID:      order.BranchID,
			Data: map[string]any{
				"orderId":     orderID,
				"isFullyPaid": true,
			},
			Version: 1,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording payment")
	}
	return nil
}

func (s *service) buildView(ticket models.KitchenTicket, order models.Order, now time.Time) TicketView {
	items := make([]ItemView, 0, len(ticket.Items))
	allReady := len(ticket.Items) > 0
	for _, item := range ticket.Items {
		if item.Status != enums.ItemStatusReady {
			allReady = false
		}
		items = append(items, itemView(item))
	}

	return TicketView{
		ID:           ticket.ID,
		OrderID:      ticket.OrderID,
		KOTNumber:    ticket.KOTNumber,
		RoundNumber:  ticket.RoundNumber,
		RunningOrder: ticket.RunningOrder(),
		Station:      ticket.Station,
		StaffName:    ticket.StaffName,
		CreatedAt:    ticket.CreatedAt,
		AgeBand:      AgeBandFor(now.Sub(ticket.CreatedAt), s.display),
		Order:        summarize(order),
		Items:        items,
		AllReady:     allReady,
	}
}

func summarize(order models.Order) OrderSummary {
	return OrderSummary{
		ID:           order.ID,
		Type:         order.Type,
		Status:       order.Status,
		Priority:     order.Priority,
		TableNumber:  order.TableNumber,
		TableSection: order.TableSection,
		TokenNumber:  order.TokenNumber,
		CustomerName: order.CustomerName,
		Notes:        order.Notes,
	}
}

func itemView(item models.TicketItem) ItemView {
	return ItemView{
		ID:           item.ID,
		Name:         item.Name,
		Variant:      item.Variant,
		Qty:          item.Qty,
		AddOns:       item.AddOns,
		Instructions: item.Instructions,
		Priority:     item.Priority,
		Status:       item.Status,
	}
}

// stationKey folds the nullable station into a map key; empty means no station.
type stationKey string

func (k stationKey) ptr() *enums.Station {
	if k == "" {
		return nil
	}
	s := enums.Station(k)
	return &s
}

// groupByStation splits dispatch items into one group per station, preserving
// item order within a group and the order stations first appear.
func groupByStation(items []CreateItemInput) (map[stationKey][]CreateItemInput, []stationKey) {
	groups := make(map[stationKey][]CreateItemInput)
	var order []stationKey
	for _, item := range items {
		key := stationKey("")
		if item.Station != nil {
			key = stationKey(*item.Station)
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}
	return groups, order
}
