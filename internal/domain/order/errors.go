package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when placing an order from an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// NotFoundError indicates an unknown order.
type NotFoundError struct {
	OrderID        int64
	TrackingNumber string
}

func (e *NotFoundError) Error() string {
	if e.TrackingNumber != "" {
		return fmt.Sprintf("order with tracking number %s not found", e.TrackingNumber)
	}
	return fmt.Sprintf("order %d not found", e.OrderID)
}

// InvalidTransitionError indicates a status change the lifecycle forbids.
type InvalidTransitionError struct {
	OrderID int64
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: cannot change status from %s to %s", e.OrderID, e.From, e.To)
}

// AlreadyDeliveredError is returned when cancelling a delivered order.
type AlreadyDeliveredError struct {
	OrderID int64
}

func (e *AlreadyDeliveredError) Error() string {
	return fmt.Sprintf("order %d is already delivered", e.OrderID)
}

// BelowMinimumOrderError indicates the subtotal is under the restaurant's
// minimum order amount.
type BelowMinimumOrderError struct {
	RestaurantID int64
	Subtotal     decimal.Decimal
	Minimum      decimal.Decimal
}

func (e *BelowMinimumOrderError) Error() string {
	return fmt.Sprintf("subtotal %s is below the minimum order amount %s of restaurant %d",
		e.Subtotal.StringFixed(2), e.Minimum.StringFixed(2), e.RestaurantID)
}
