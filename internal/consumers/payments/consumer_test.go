package payments

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

type stubPayer struct {
	calls []uuid.UUID
	errs  []error
}

func (s *stubPayer) MarkOrderPaid(ctx context.Context, orderID uuid.UUID) error {
	s.calls = append(s.calls, orderID)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return err
	}
	return nil
}

func newTestConsumer(t *testing.T, payer *stubPayer) *Consumer {
	t.Helper()
	c, err := NewConsumer(payer, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return c
}

func encode(t *testing.T, msg PaymentMessage) []byte {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

func TestProcessFullyPaidMarksOrder(t *testing.T) {
	payer := &stubPayer{}
	c := newTestConsumer(t, payer)
	orderID := uuid.New()

	err := c.Process(context.Background(), encode(t, PaymentMessage{
		EventID:     uuid.NewString(),
		OrderID:     orderID,
		IsFullyPaid: true,
	}))
	require.NoError(t, err)
	require.Len(t, payer.calls, 1)
	assert.Equal(t, orderID, payer.calls[0])
}

func TestProcessPartialPaymentIsNoOp(t *testing.T) {
	payer := &stubPayer{}
	c := newTestConsumer(t, payer)

	err := c.Process(context.Background(), encode(t, PaymentMessage{
		OrderID:     uuid.New(),
		IsFullyPaid: false,
	}))
	require.NoError(t, err)
	assert.Empty(t, payer.calls)
}

func TestProcessDropsMalformedMessage(t *testing.T) {
	payer := &stubPayer{}
	c := newTestConsumer(t, payer)

	err := c.Process(context.Background(), []byte("not json"))
	require.NoError(t, err)
	assert.Empty(t, payer.calls)
}

func TestProcessRetriesRetryableErrors(t *testing.T) {
	payer := &stubPayer{errs: []error{
		pkgerrors.New(pkgerrors.CodeConflict, "serialization failure"),
		pkgerrors.New(pkgerrors.CodeConflict, "serialization failure"),
	}}
	c := newTestConsumer(t, payer)

	err := c.Process(context.Background(), encode(t, PaymentMessage{
		OrderID:     uuid.New(),
		IsFullyPaid: true,
	}))
	require.NoError(t, err)
	assert.Len(t, payer.calls, 3)
}

func TestProcessDropsUnknownOrder(t *testing.T) {
	payer := &stubPayer{errs: []error{pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}}
	c := newTestConsumer(t, payer)

	err := c.Process(context.Background(), encode(t, PaymentMessage{
		OrderID:     uuid.New(),
		IsFullyPaid: true,
	}))
	require.NoError(t, err)
	assert.Len(t, payer.calls, 1)
}

func TestProcessSurfacesPersistentFailure(t *testing.T) {
	payer := &stubPayer{errs: []error{pkgerrors.New(pkgerrors.CodeInternal, "db down")}}
	c := newTestConsumer(t, payer)

	err := c.Process(context.Background(), encode(t, PaymentMessage{
		OrderID:     uuid.New(),
		IsFullyPaid: true,
	}))
	require.Error(t, err)
}
