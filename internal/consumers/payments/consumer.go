package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

// PaymentMessage is what the platform's payment service publishes when a
// settlement lands. Only fully-paid settlements touch the ticket set.
type PaymentMessage struct {
	EventID     string    `json:"eventId"`
	OrderID     uuid.UUID `json:"orderId"`
	BranchID    uuid.UUID `json:"branchId"`
	IsFullyPaid bool      `json:"isFullyPaid"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type orderPayer interface {
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID) error
}

// Consumer applies settled payments to orders. MarkOrderPaid is idempotent,
// so redelivered messages are safe.
type Consumer struct {
	svc        orderPayer
	logg       *logger.Logger
	maxRetries uint64
}

func NewConsumer(svc orderPayer, logg *logger.Logger) (*Consumer, error) {
	if svc == nil {
		return nil, fmt.Errorf("tickets service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{svc: svc, logg: logg, maxRetries: 4}, nil
}

// Process handles one payment message. A returned error means the message
// should be redelivered.
func (c *Consumer) Process(ctx context.Context, raw []byte) error {
	var msg PaymentMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		// Malformed messages never become valid; drop instead of looping.
		c.logg.Error(ctx, "dropping malformed payment message", err)
		return nil
	}
	if msg.OrderID == uuid.Nil {
		c.logg.Warn(ctx, "dropping payment message without order id")
		return nil
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   msg.EventID,
		"order_id":   msg.OrderID.String(),
		"fully_paid": msg.IsFullyPaid,
	})

	if !msg.IsFullyPaid {
		c.logg.Info(logCtx, "partial payment, order stays on displays")
		return nil
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.svc.MarkOrderPaid(ctx, msg.OrderID); err != nil {
			if pkgerrors.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			// The order lives in another deployment's database.
			c.logg.Warn(logCtx, "payment for unknown order, dropping")
			return nil
		}
		c.logg.Error(logCtx, "failed to apply payment", err)
		return err
	}

	c.logg.Info(logCtx, "order marked fully paid")
	return nil
}
