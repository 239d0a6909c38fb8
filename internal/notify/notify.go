// Package notify provides order.Notifier implementations.
package notify

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/food-delivery/internal/domain/order"
)

// Log writes notifications to a logger. It is the default customer channel.
type Log struct {
	lg *zap.Logger
}

// NewLog creates a Log notifier. When lg is nil the logger is taken from the
// context of each call.
func NewLog(lg *zap.Logger) *Log {
	return &Log{lg: lg}
}

// Notify implements order.Notifier.
func (l *Log) Notify(ctx context.Context, n order.Notification) error {
	lg := l.lg
	if lg == nil {
		lg = zctx.From(ctx)
	}
	lg.Info("Customer notified",
		zap.String("kind", string(n.Kind)),
		zap.Int64("order_id", n.OrderID),
		zap.Int64("customer_id", n.CustomerID),
		zap.String("tracking_number", n.TrackingNumber),
		zap.Stringer("status", n.Status),
		zap.String("message", n.Message),
	)
	return nil
}

// DefaultInboxSize is the number of notifications kept per customer.
const DefaultInboxSize = 50

// Inbox keeps the most recent notifications of every customer in memory so
// they can be read back over the API.
type Inbox struct {
	mu         sync.Mutex
	size       int
	byCustomer map[int64][]order.Notification
}

// NewInbox creates an Inbox holding up to size notifications per customer.
// A non-positive size selects DefaultInboxSize.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{
		size:       size,
		byCustomer: make(map[int64][]order.Notification),
	}
}

// Notify implements order.Notifier. The oldest notification of the customer
// is dropped once the inbox is full.
func (i *Inbox) Notify(_ context.Context, n order.Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	list := append(i.byCustomer[n.CustomerID], n)
	if len(list) > i.size {
		list = slices.Delete(list, 0, len(list)-i.size)
	}
	i.byCustomer[n.CustomerID] = list
	return nil
}

// Notifications returns the customer's notifications in delivery order.
func (i *Inbox) Notifications(_ context.Context, customerID int64) ([]order.Notification, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.byCustomer[customerID]), nil
}

// Multi fans a notification out to several notifiers. Every notifier is
// tried; failures are joined.
type Multi []order.Notifier

// Notify implements order.Notifier.
func (m Multi) Notify(ctx context.Context, n order.Notification) error {
	var errs []error
	for _, nf := range m {
		if err := nf.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
