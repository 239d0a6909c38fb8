package order

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/food-delivery/internal/domain/cart"
	"github.com/xenking/food-delivery/internal/domain/catalog"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/pricing"
	"github.com/xenking/food-delivery/internal/domain/promotion"
)

const instrumentationName = "github.com/xenking/food-delivery/internal/domain/order"

// PlaceOrderRequest holds the input for placing an order from a customer's
// cart.
type PlaceOrderRequest struct {
	CustomerID int64
	// DeliveryAddress defaults to the customer's address when empty.
	DeliveryAddress     string
	PaymentMethod       string
	SpecialInstructions string
	// PromoCode is optional. Unknown or inapplicable codes are ignored.
	PromoCode string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(lg *zap.Logger) Option {
	return func(s *Service) { s.lg = lg }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLeadTime overrides DefaultLeadTime.
func WithLeadTime(d time.Duration) Option {
	return func(s *Service) { s.leadTime = d }
}

// WithMeterProvider sets the meter provider for order metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meterProvider = mp }
}

// WithTracerProvider sets the tracer provider for order spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracerProvider = tp }
}

// Service places orders and drives them through their lifecycle.
type Service struct {
	customers  customer.Repository
	catalog    catalog.Repository
	promotions promotion.Repository
	orders     Repository
	notifier   Notifier

	lg             *zap.Logger
	now            func() time.Time
	leadTime       time.Duration
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider

	tracer      trace.Tracer
	placed      metric.Int64Counter
	transitions metric.Int64Counter
	redeemed    metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	customers customer.Repository,
	cat catalog.Repository,
	promotions promotion.Repository,
	orders Repository,
	notifier Notifier,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		customers:      customers,
		catalog:        cat,
		promotions:     promotions,
		orders:         orders,
		notifier:       notifier,
		lg:             zap.NewNop(),
		now:            time.Now,
		leadTime:       DefaultLeadTime,
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	s.tracer = s.tracerProvider.Tracer(instrumentationName)
	meter := s.meterProvider.Meter(instrumentationName)

	var err error
	if s.placed, err = meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	if s.transitions, err = meter.Int64Counter("orders.transitions",
		metric.WithDescription("Order status transitions"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.transitions counter")
	}
	if s.redeemed, err = meter.Int64Counter("promotions.redeemed",
		metric.WithDescription("Promotions applied to placed orders"),
	); err != nil {
		return nil, errors.Wrap(err, "promotions.redeemed counter")
	}

	return s, nil
}

// PlaceOrder prices the customer's cart, stores the order and clears the
// cart. Validation happens before any state changes; a promotion is redeemed
// only together with a stored order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Place",
		trace.WithAttributes(attribute.Int64("customer.id", req.CustomerID)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	c, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	// The cart is emptied up front so a concurrent placement by the same
	// customer sees nothing to order. Failures put the lines back.
	restaurantID, cartLines := c.Cart.Take()
	if len(cartLines) == 0 {
		return nil, ErrEmptyCart
	}
	defer func() {
		if rerr != nil {
			c.Cart.Restore(cartLines)
			return
		}
		c.Cart.Release()
	}()

	r, err := s.catalog.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !r.Open {
		return nil, &catalog.RestaurantClosedError{RestaurantID: r.ID}
	}

	lines, err := s.snapshotLines(ctx, restaurantID, cartLines)
	if err != nil {
		return nil, err
	}

	promo, err := s.lookupPromotion(ctx, req.PromoCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fees := pricing.Fees{
		DeliveryFee:        r.DeliveryFee,
		MinimumOrderAmount: r.MinimumOrderAmount,
	}
	breakdown := pricing.Compute(lines, fees, promo, now)
	if breakdown.BelowMinimum(fees) {
		return nil, &BelowMinimumOrderError{
			RestaurantID: r.ID,
			Subtotal:     breakdown.Subtotal,
			Minimum:      r.MinimumOrderAmount,
		}
	}
	if promo != nil && !breakdown.PromotionApplied() {
		s.lg.Debug("Promotion not applied",
			zap.String("code", promo.Code),
			zap.Error(promotion.Check(promo, breakdown.Subtotal, now)),
		)
	}

	address := req.DeliveryAddress
	if address == "" {
		address = c.Address
	}
	params := Params{
		CustomerID:          c.ID,
		RestaurantID:        r.ID,
		Lines:               lines,
		DeliveryAddress:     address,
		PaymentMethod:       req.PaymentMethod,
		SpecialInstructions: req.SpecialInstructions,
		Pricing:             breakdown,
		CreatedAt:           now,
		LeadTime:            s.leadTime,
	}

	o, err := s.orders.Insert(ctx, func(id int64) (*Order, error) {
		o, err := New(id, params)
		if err != nil {
			return nil, err
		}
		if !params.Pricing.PromotionApplied() {
			return o, nil
		}

		err = s.promotions.Redeem(ctx, params.Pricing.PromotionCode)
		switch {
		case errors.Is(err, promotion.ErrUsageLimitReached):
			s.lg.Info("Promotion exhausted during placement, charging full price",
				zap.String("code", params.Pricing.PromotionCode),
			)
			params.Pricing = pricing.Compute(lines, fees, nil, now)
			return New(id, params)
		case err != nil:
			return nil, errors.Wrap(err, "redeem promotion")
		}
		return o, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.Int64("restaurant.id", o.RestaurantID)))
	if o.Pricing.PromotionApplied() {
		s.redeemed.Add(ctx, 1, metric.WithAttributes(attribute.String("promotion.code", o.Pricing.PromotionCode)))
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID))

	s.lg.Info("Order placed",
		zap.Int64("order_id", o.ID),
		zap.String("tracking_number", o.TrackingNumber),
		zap.Int64("customer_id", o.CustomerID),
		zap.String("total", o.Pricing.Total.StringFixed(2)),
		zap.String("promotion", o.Pricing.PromotionCode),
	)
	return o, nil
}

// snapshotLines resolves current menu prices for the cart lines.
func (s *Service) snapshotLines(ctx context.Context, restaurantID int64, cartLines []cart.Line) ([]Line, error) {
	lines := make([]Line, 0, len(cartLines))
	for _, cl := range cartLines {
		if cl.Quantity <= 0 {
			return nil, &cart.InvalidQuantityError{ItemID: cl.ItemID, Quantity: cl.Quantity}
		}
		item, err := s.catalog.MenuItem(ctx, restaurantID, cl.ItemID)
		if err != nil {
			return nil, err
		}
		if !item.Available {
			return nil, &catalog.ItemUnavailableError{ItemID: item.ID, Name: item.Name}
		}
		lines = append(lines, Line{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  cl.Quantity,
		})
	}
	return lines, nil
}

// lookupPromotion returns nil for empty or unknown codes.
func (s *Service) lookupPromotion(ctx context.Context, code string) (*promotion.Promotion, error) {
	code = promotion.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	p, err := s.promotions.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, promotion.ErrNotFound) {
			s.lg.Debug("Unknown promotion code", zap.String("code", code))
			return nil, nil
		}
		return nil, errors.Wrap(err, "lookup promotion")
	}
	return p, nil
}

// TransitionStatus moves the order to target if the lifecycle allows it.
func (s *Service) TransitionStatus(ctx context.Context, id int64, target Status) (*Order, error) {
	if !target.Valid() {
		return nil, errors.Errorf("unknown target status %d", int(target))
	}
	if target == StatusCancelled {
		return s.Cancel(ctx, id)
	}

	var from Status
	o, err := s.orders.Update(ctx, id, func(o *Order) error {
		from = o.Status()
		return o.Advance(target)
	})
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, o, from)
	return o, nil
}

// Confirm moves a Pending order to Confirmed.
func (s *Service) Confirm(ctx context.Context, id int64) (*Order, error) {
	return s.TransitionStatus(ctx, id, StatusConfirmed)
}

// StartPreparing moves a Confirmed order to Preparing.
func (s *Service) StartPreparing(ctx context.Context, id int64) (*Order, error) {
	return s.TransitionStatus(ctx, id, StatusPreparing)
}

// MarkOutForDelivery moves a Preparing order to OutForDelivery without
// assigning a delivery person.
func (s *Service) MarkOutForDelivery(ctx context.Context, id int64) (*Order, error) {
	return s.TransitionStatus(ctx, id, StatusOutForDelivery)
}

// MarkDelivered moves an OutForDelivery order to Delivered.
func (s *Service) MarkDelivered(ctx context.Context, id int64) (*Order, error) {
	return s.TransitionStatus(ctx, id, StatusDelivered)
}

// AssignDeliveryPerson assigns a delivery person and moves the order to
// OutForDelivery.
func (s *Service) AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64) (*Order, error) {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	dp, err := s.catalog.DeliveryPerson(ctx, deliveryPersonID)
	if err != nil {
		return nil, err
	}

	var from Status
	o, err := s.orders.Update(ctx, orderID, func(o *Order) error {
		from = o.Status()
		return o.AssignDeliveryPerson(dp.ID)
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("Delivery person assigned",
		zap.Int64("order_id", o.ID),
		zap.Int64("delivery_person_id", dp.ID),
		zap.String("name", dp.Name),
		zap.String("contact", dp.Contact),
	)
	s.statusChanged(ctx, o, from)
	return o, nil
}

// Cancel cancels an order that has not left the restaurant.
func (s *Service) Cancel(ctx context.Context, id int64) (*Order, error) {
	var from Status
	o, err := s.orders.Update(ctx, id, func(o *Order) error {
		from = o.Status()
		return o.Cancel()
	})
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, o, from)
	return o, nil
}

// statusChanged records metrics and notifies the customer about o's new
// status.
func (s *Service) statusChanged(ctx context.Context, o *Order, from Status) {
	to := o.Status()
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
	s.lg.Info("Order status changed",
		zap.Int64("order_id", o.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)

	now := s.now()
	s.notify(ctx, Notification{
		Kind:           NotificationStatus,
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		TrackingNumber: o.TrackingNumber,
		Status:         to,
		Message:        StatusMessage(to),
		At:             now,
	})
	if to == StatusCancelled {
		s.notify(ctx, Notification{
			Kind:           NotificationRefund,
			OrderID:        o.ID,
			CustomerID:     o.CustomerID,
			TrackingNumber: o.TrackingNumber,
			Status:         to,
			Message:        RefundMessage,
			At:             now,
		})
	}
}

func (s *Service) notify(ctx context.Context, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.lg.Warn("Notification failed",
			zap.Int64("order_id", n.OrderID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err),
		)
	}
}

// Get returns the order with the given ID.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// GetByTrackingNumber returns the order identified by a tracking number.
func (s *Service) GetByTrackingNumber(ctx context.Context, number string) (*Order, error) {
	id, err := ParseTrackingNumber(number)
	if err != nil {
		return nil, &NotFoundError{TrackingNumber: number}
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, &NotFoundError{TrackingNumber: number}
		}
		return nil, err
	}
	return o, nil
}

// ListAll returns all orders, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.list(ctx, func(*Order) bool { return true })
}

// ListByCustomer returns the customer's orders, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]*Order, error) {
	return s.list(ctx, func(o *Order) bool { return o.CustomerID == customerID })
}

// ListByStatus returns orders currently in status, newest first.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return s.list(ctx, func(o *Order) bool { return o.Status() == status })
}

// ListByDateRange returns orders created strictly between start and end,
// newest first.
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]*Order, error) {
	return s.list(ctx, func(o *Order) bool {
		return o.CreatedAt.After(start) && o.CreatedAt.Before(end)
	})
}

func (s *Service) list(ctx context.Context, keep func(*Order) bool) ([]*Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	out := slices.DeleteFunc(all, func(o *Order) bool { return !keep(o) })
	slices.SortStableFunc(out, func(a, b *Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}
