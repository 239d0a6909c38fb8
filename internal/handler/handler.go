// Package handler exposes carts, orders and analytics over HTTP with JSON
// bodies encoded by jx.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/xenking/food-delivery/internal/domain/analytics"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/order"
	"github.com/xenking/food-delivery/internal/notify"
)

// OrderService is the subset of *order.Service used by the handlers.
type OrderService interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	GetByTrackingNumber(ctx context.Context, number string) (*order.Order, error)
	ListAll(ctx context.Context) ([]*order.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error)
	ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*order.Order, error)
	TransitionStatus(ctx context.Context, id int64, target order.Status) (*order.Order, error)
	AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64) (*order.Order, error)
	Cancel(ctx context.Context, id int64) (*order.Order, error)
}

// CartService is the subset of *customer.CartService used by the handlers.
type CartService interface {
	AddItem(ctx context.Context, customerID, restaurantID, itemID int64, qty int) error
	RemoveItem(ctx context.Context, customerID, restaurantID, itemID int64) error
	Clear(ctx context.Context, customerID int64) error
	View(ctx context.Context, customerID int64) (*customer.CartView, error)
}

// AnalyticsService produces order statistics.
type AnalyticsService interface {
	Snapshot(ctx context.Context) (analytics.Snapshot, error)
}

// NotificationFeed reads back the notifications sent to a customer.
type NotificationFeed interface {
	Notifications(ctx context.Context, customerID int64) ([]order.Notification, error)
}

var (
	_ OrderService     = (*order.Service)(nil)
	_ CartService      = (*customer.CartService)(nil)
	_ AnalyticsService = (*analytics.Service)(nil)
	_ NotificationFeed = (*notify.Inbox)(nil)
)

// Handler serves the /api routes.
type Handler struct {
	orders        OrderService
	carts         CartService
	analytics     AnalyticsService
	notifications NotificationFeed
}

// New constructs a Handler with the required domain dependencies.
func New(orders OrderService, carts CartService, stats AnalyticsService, feed NotificationFeed) *Handler {
	return &Handler{
		orders:        orders,
		carts:         carts,
		analytics:     stats,
		notifications: feed,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/customers/{customerID}/cart", h.ViewCart)
	mux.HandleFunc("POST /api/customers/{customerID}/cart/items", h.AddCartItem)
	mux.HandleFunc("DELETE /api/customers/{customerID}/cart/items/{restaurantID}/{itemID}", h.RemoveCartItem)
	mux.HandleFunc("DELETE /api/customers/{customerID}/cart", h.ClearCart)

	mux.HandleFunc("POST /api/customers/{customerID}/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/customers/{customerID}/orders", h.ListCustomerOrders)
	mux.HandleFunc("GET /api/customers/{customerID}/notifications", h.ListNotifications)

	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{orderID}", h.GetOrder)
	mux.HandleFunc("POST /api/orders/{orderID}/status", h.UpdateStatus)
	mux.HandleFunc("POST /api/orders/{orderID}/assign", h.AssignDeliveryPerson)
	mux.HandleFunc("POST /api/orders/{orderID}/cancel", h.CancelOrder)
	mux.HandleFunc("GET /api/tracking/{trackingNumber}", h.TrackOrder)

	mux.HandleFunc("GET /api/analytics", h.Analytics)
}
