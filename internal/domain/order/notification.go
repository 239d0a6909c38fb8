package order

import (
	"context"
	"time"
)

// NotificationKind distinguishes status updates from refund notices.
type NotificationKind string

const (
	NotificationStatus NotificationKind = "status"
	NotificationRefund NotificationKind = "refund"
)

// RefundMessage accompanies every cancellation.
const RefundMessage = "Refund will be processed within 3-5 business days."

var statusMessages = map[Status]string{
	StatusConfirmed:      "Your order has been confirmed and is being prepared!",
	StatusPreparing:      "Your order is being prepared by our chefs!",
	StatusOutForDelivery: "Your order is out for delivery! Track your order for real-time updates.",
	StatusDelivered:      "Your order has been delivered! Enjoy your meal!",
	StatusCancelled:      "Your order has been cancelled. Refund will be processed soon.",
}

// StatusMessage returns the customer-facing message for entering status s.
func StatusMessage(s Status) string {
	return statusMessages[s]
}

// Notification is a message for the customer about their order.
type Notification struct {
	Kind           NotificationKind
	OrderID        int64
	CustomerID     int64
	TrackingNumber string
	Status         Status
	Message        string
	At             time.Time
}

// Notifier delivers notifications. Delivery failures never undo the status
// change that caused them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
