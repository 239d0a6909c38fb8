// Package order implements order placement and the order lifecycle.
package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/food-delivery/internal/domain/pricing"
)

// DefaultLeadTime is the estimated time between placement and delivery.
const DefaultLeadTime = 45 * time.Minute

const (
	trackingPrefix = "FD"
	trackingDigits = 8
)

// Line is an immutable snapshot of a purchased menu item. Later menu price
// changes do not affect it.
type Line = pricing.Line

// Order is a priced, trackable purchase. Status and delivery person change
// only through Advance, AssignDeliveryPerson and Cancel.
type Order struct {
	ID                  int64
	TrackingNumber      string
	CustomerID          int64
	RestaurantID        int64
	Lines               []Line
	DeliveryAddress     string
	PaymentMethod       string
	SpecialInstructions string
	CreatedAt           time.Time
	EstimatedDelivery   time.Time
	Pricing             pricing.Breakdown

	status           Status
	deliveryPersonID int64
}

// Params holds the input for New.
type Params struct {
	CustomerID          int64
	RestaurantID        int64
	Lines               []Line
	DeliveryAddress     string
	PaymentMethod       string
	SpecialInstructions string
	Pricing             pricing.Breakdown
	CreatedAt           time.Time
	LeadTime            time.Duration
}

// New builds a Pending order with the given identifier. It rejects orders
// without lines and price breakdowns that violate
// total = subtotal + fee + tax - discount >= 0.
func New(id int64, p Params) (*Order, error) {
	if id <= 0 {
		return nil, errors.Errorf("invalid order id %d", id)
	}
	if len(p.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range p.Lines {
		if l.Quantity <= 0 {
			return nil, errors.Errorf("line for item %d has quantity %d", l.ItemID, l.Quantity)
		}
	}
	b := p.Pricing
	want := b.Subtotal.Add(b.DeliveryFee).Add(b.Tax).Sub(b.Discount)
	if !want.Equal(b.Total) || b.Total.IsNegative() {
		return nil, errors.Errorf("inconsistent price breakdown: total %s, expected %s", b.Total, want)
	}

	leadTime := p.LeadTime
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}

	lines := make([]Line, len(p.Lines))
	copy(lines, p.Lines)

	return &Order{
		ID:                  id,
		TrackingNumber:      TrackingNumber(id),
		CustomerID:          p.CustomerID,
		RestaurantID:        p.RestaurantID,
		Lines:               lines,
		DeliveryAddress:     p.DeliveryAddress,
		PaymentMethod:       p.PaymentMethod,
		SpecialInstructions: p.SpecialInstructions,
		CreatedAt:           p.CreatedAt,
		EstimatedDelivery:   p.CreatedAt.Add(leadTime),
		Pricing:             b,
		status:              StatusPending,
	}, nil
}

// Status returns the current lifecycle state.
func (o *Order) Status() Status {
	return o.status
}

// DeliveryPersonID returns the assigned delivery person, if any.
func (o *Order) DeliveryPersonID() (int64, bool) {
	return o.deliveryPersonID, o.deliveryPersonID != 0
}

// Advance moves the order to target if the transition table allows it.
// Cancellation goes through Cancel.
func (o *Order) Advance(target Status) error {
	if target == StatusCancelled {
		return o.Cancel()
	}
	if !o.status.CanTransitionTo(target) {
		return &InvalidTransitionError{OrderID: o.ID, From: o.status, To: target}
	}
	o.status = target
	return nil
}

// AssignDeliveryPerson records the delivery person and moves the order to
// OutForDelivery in one step.
func (o *Order) AssignDeliveryPerson(deliveryPersonID int64) error {
	if !o.status.CanAssign() {
		return &InvalidTransitionError{OrderID: o.ID, From: o.status, To: StatusOutForDelivery}
	}
	o.deliveryPersonID = deliveryPersonID
	o.status = StatusOutForDelivery
	return nil
}

// Cancel moves the order to Cancelled.
func (o *Order) Cancel() error {
	switch {
	case o.status == StatusDelivered:
		return &AlreadyDeliveredError{OrderID: o.ID}
	case !o.status.Cancellable():
		return &InvalidTransitionError{OrderID: o.ID, From: o.status, To: StatusCancelled}
	}
	o.status = StatusCancelled
	return nil
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.Lines = make([]Line, len(o.Lines))
	copy(c.Lines, o.Lines)
	return &c
}

// TrackingNumber derives the tracking number for an order ID.
func TrackingNumber(id int64) string {
	return fmt.Sprintf("%s%0*d", trackingPrefix, trackingDigits, id)
}

// ParseTrackingNumber returns the order ID encoded in a tracking number.
// Only the canonical form produced by TrackingNumber is accepted, so IDs
// below 10^8 need exactly eight digits.
func ParseTrackingNumber(v string) (int64, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	digits, ok := strings.CutPrefix(v, trackingPrefix)
	if !ok || len(digits) < trackingDigits {
		return 0, errors.Errorf("malformed tracking number %q", v)
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 || TrackingNumber(id) != v {
		return 0, errors.Errorf("malformed tracking number %q", v)
	}
	return id, nil
}

// Repository is the order collection. Implementations own the identifier
// counter and must assign IDs under the same critical section as insertion.
type Repository interface {
	// Insert reserves the next identifier, calls build with it and stores the
	// result. When build fails nothing is stored and the identifier is not
	// consumed.
	Insert(ctx context.Context, build func(id int64) (*Order, error)) (*Order, error)
	// Get returns a copy of the order or *NotFoundError.
	Get(ctx context.Context, id int64) (*Order, error)
	// Update applies fn to a copy of the order and stores it when fn
	// succeeds. Updates of the same order are serialized.
	Update(ctx context.Context, id int64, fn func(o *Order) error) (*Order, error)
	// List returns copies of all orders ordered by ID.
	List(ctx context.Context) ([]*Order, error)
}
