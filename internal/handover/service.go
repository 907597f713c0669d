package handover

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/tablemesh/kds-backend/pkg/db"
	"github.com/tablemesh/kds-backend/pkg/enums"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/logger"
	"github.com/tablemesh/kds-backend/pkg/outbox"
)

type txRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the shift handover operations.
type Service interface {
	ListOpenOrders(ctx context.Context, staffID uuid.UUID) ([]OpenOrderSummary, error)
	ListEligibleRecipients(ctx context.Context, branchID, callerID uuid.UUID) ([]StaffView, error)
	Reassign(ctx context.Context, input ReassignInput) (*ReassignResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService builds a handover service with the required dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("handover repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter, logg: logg}, nil
}

func (s *service) ListOpenOrders(ctx context.Context, staffID uuid.UUID) ([]OpenOrderSummary, error) {
	orders, err := s.repo.ListOpenOrdersByStaff(ctx, staffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing open orders")
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	counts, err := s.repo.CountItemsByOrders(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting order items")
	}

	summaries := make([]OpenOrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OpenOrderSummary{
			ID:        order.ID,
			Label:     orderLabel(order),
			Type:      order.Type,
			Status:    order.Status,
			ItemCount: counts[order.ID],
			Total:     order.Total,
		})
	}
	return summaries, nil
}

func (s *service) ListEligibleRecipients(ctx context.Context, branchID, callerID uuid.UUID) ([]StaffView, error) {
	staff, err := s.repo.ListActiveStaff(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing staff")
	}

	views := make([]StaffView, 0, len(staff))
	for _, member := range staff {
		if member.ID == callerID {
			continue
		}
		if !member.Role.IsHandoverEligible() {
			continue
		}
		views = append(views, StaffView{ID: member.ID, Name: member.Name, Role: member.Role})
	}
	return views, nil
}

func (s *service) Reassign(ctx context.Context, input ReassignInput) (*ReassignResult, error) {
	if input.ToStaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if input.ToStaffID == input.FromStaffID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot hand over to yourself")
	}

	recipient, err := s.repo.FindStaff(ctx, input.ToStaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading recipient")
	}
	if !recipient.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is inactive")
	}
	if !recipient.Role.IsHandoverEligible() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient role cannot own orders")
	}
	if recipient.BranchID != input.BranchID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient belongs to another branch")
	}

	actor := &outbox.ActorRef{StaffID: input.FromStaffID, BranchID: input.BranchID}

	var moved int
	err = s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		open, err := txRepo.ListOpenOrdersByStaff(ctx, input.FromStaffID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			moved = 0
			return nil
		}

		orderIDs := make([]uuid.UUID, 0, len(open))
		for _, order := range open {
			orderIDs = append(orderIDs, order.ID)
		}

		affected, err := txRepo.ReassignOrders(ctx, orderIDs, input.FromStaffID, input.ToStaffID)
		if err != nil {
			return err
		}
		if affected != int64(len(orderIDs)) {
			return fmt.Errorf("expected to move %d orders, moved %d", len(orderIDs), affected)
		}

		for _, order := range open {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderUpdated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				BranchID:      order.BranchID,
				Actor:         actor,
				Data: map[string]any{
					"orderId":   order.ID,
					"status":    order.Status,
					"staffName": recipient.Name,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		moved = len(orderIDs)
		return nil
	})
	if err != nil {
		// The whole handover rolled back; the caller can simply retry.
		if dbpkg.IsSerializationFailure(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "handover conflicted with concurrent changes, retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "handover could not complete, retry")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"from_staff_id": input.FromStaffID.String(),
			"to_staff_id":   input.ToStaffID.String(),
			"orders_moved":  moved,
		})
		s.logg.Info(logCtx, "shift handover completed")
	}

	return &ReassignResult{
		Count:     moved,
		Recipient: StaffView{ID: recipient.ID, Name: recipient.Name, Role: recipient.Role},
	}, nil
}
