package jobs

import (
	"context"

	"go.uber.org/zap"

	"github.com/xenking/food-delivery/internal/domain/analytics"
	"github.com/xenking/food-delivery/internal/domain/order"
)

// SnapshotSource produces analytics snapshots.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (analytics.Snapshot, error)
}

// FilterLoader rebuilds a promotion code filter and reports its size.
type FilterLoader interface {
	LoadFilter(ctx context.Context) (int, error)
}

// AnalyticsReport logs an analytics snapshot.
func AnalyticsReport(src SnapshotSource, lg *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		s, err := src.Snapshot(ctx)
		if err != nil {
			return err
		}
		fields := []zap.Field{
			zap.Int("total_orders", s.TotalOrders),
			zap.Int("delivered_orders", s.DeliveredOrders),
			zap.String("delivered_revenue", s.DeliveredRevenue.StringFixed(2)),
			zap.String("pending_value", s.PendingValue.StringFixed(2)),
			zap.String("average_order_value", s.AverageOrderValue.StringFixed(2)),
			zap.Int("orders_today", s.OrdersToday),
			zap.Int("active_promotions", s.ActivePromotions),
		}
		for _, st := range order.Statuses {
			if n := s.ByStatus[st]; n > 0 {
				fields = append(fields, zap.Int("status."+st.String(), n))
			}
		}
		lg.Info("Analytics report", fields...)
		return nil
	}
}

// RefreshPromotionFilter reloads the promotion code filter so codes added
// by other writers become visible.
func RefreshPromotionFilter(loader FilterLoader, lg *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n, err := loader.LoadFilter(ctx)
		if err != nil {
			return err
		}
		lg.Debug("Promotion filter refreshed", zap.Int("codes", n))
		return nil
	}
}
