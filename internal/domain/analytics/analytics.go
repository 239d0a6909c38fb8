// Package analytics aggregates order statistics for reporting.
package analytics

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/food-delivery/internal/domain/order"
	"github.com/xenking/food-delivery/internal/domain/promotion"
)

// Snapshot is a point-in-time summary of all orders.
type Snapshot struct {
	TotalOrders int
	ByStatus    map[order.Status]int

	DeliveredOrders int
	// DeliveredRevenue sums the totals of delivered orders.
	DeliveredRevenue decimal.Decimal
	// PendingValue sums the totals of orders neither delivered nor cancelled.
	PendingValue decimal.Decimal
	// TotalRevenue is DeliveredRevenue + PendingValue.
	TotalRevenue decimal.Decimal
	// AverageOrderValue is the mean delivered total, zero without deliveries.
	AverageOrderValue decimal.Decimal

	// OrdersToday counts orders created on the calendar date of GeneratedAt
	// in its location.
	OrdersToday      int
	ActivePromotions int
	GeneratedAt      time.Time
}

// Compute aggregates orders as of now.
func Compute(orders []*order.Order, now time.Time) Snapshot {
	s := Snapshot{
		TotalOrders:       len(orders),
		ByStatus:          make(map[order.Status]int, len(order.Statuses)),
		DeliveredRevenue:  decimal.Zero,
		PendingValue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		GeneratedAt:       now,
	}

	y, m, d := now.Date()
	for _, o := range orders {
		status := o.Status()
		s.ByStatus[status]++

		switch status {
		case order.StatusDelivered:
			s.DeliveredOrders++
			s.DeliveredRevenue = s.DeliveredRevenue.Add(o.Pricing.Total)
		case order.StatusCancelled:
		default:
			s.PendingValue = s.PendingValue.Add(o.Pricing.Total)
		}

		oy, om, od := o.CreatedAt.In(now.Location()).Date()
		if oy == y && om == m && od == d {
			s.OrdersToday++
		}
	}

	s.TotalRevenue = s.DeliveredRevenue.Add(s.PendingValue)
	if s.DeliveredOrders > 0 {
		s.AverageOrderValue = s.DeliveredRevenue.Div(decimal.NewFromInt(int64(s.DeliveredOrders)))
	}
	return s
}

// Service computes snapshots from the live repositories.
type Service struct {
	orders     order.Repository
	promotions promotion.Repository
	now        func() time.Time
}

// NewService creates an analytics Service. A nil now defaults to time.Now.
func NewService(orders order.Repository, promotions promotion.Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{orders: orders, promotions: promotions, now: now}
}

// Snapshot recomputes the statistics over all current orders.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "list orders")
	}
	promos, err := s.promotions.List(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "list promotions")
	}

	now := s.now()
	snap := Compute(orders, now)
	for i := range promos {
		if promos[i].IsValid(now) {
			snap.ActivePromotions++
		}
	}
	return snap, nil
}
