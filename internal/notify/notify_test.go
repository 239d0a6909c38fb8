package notify

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/food-delivery/internal/domain/order"
)

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, order.Notification) error { return f.err }

func TestLog_Notify(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLog(zap.New(core))

	err := n.Notify(context.Background(), order.Notification{
		Kind:           order.NotificationStatus,
		OrderID:        3,
		CustomerID:     1,
		TrackingNumber: order.TrackingNumber(3),
		Status:         order.StatusConfirmed,
		Message:        order.StatusMessage(order.StatusConfirmed),
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("Customer notified").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "FD00000003", fields["tracking_number"])
	assert.Equal(t, "Confirmed", fields["status"])
}

func TestInbox(t *testing.T) {
	inbox := NewInbox(2)
	ctx := context.Background()
	for _, n := range []order.Notification{
		{OrderID: 1, CustomerID: 1},
		{OrderID: 2, CustomerID: 2},
		{OrderID: 3, CustomerID: 1},
		{OrderID: 4, CustomerID: 1},
	} {
		require.NoError(t, inbox.Notify(ctx, n))
	}

	mine, err := inbox.Notifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(3), mine[0].OrderID)
	assert.Equal(t, int64(4), mine[1].OrderID)

	// Callers get a copy.
	mine[0].OrderID = 99
	again, err := inbox.Notifications(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), again[0].OrderID)

	none, err := inbox.Notifications(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMulti(t *testing.T) {
	inbox := NewInbox(0)
	core, logs := observer.New(zap.InfoLevel)
	boom := errors.New("boom")
	m := Multi{NewLog(zap.New(core)), failingNotifier{err: boom}, inbox}

	err := m.Notify(context.Background(), order.Notification{OrderID: 1, CustomerID: 1})
	require.ErrorIs(t, err, boom)

	got, err := inbox.Notifications(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, logs.FilterMessage("Customer notified").Len())

	require.NoError(t, Multi{inbox}.Notify(context.Background(), order.Notification{OrderID: 2, CustomerID: 1}))
}
