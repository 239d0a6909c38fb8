package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/food-delivery/internal/domain/analytics"
	"github.com/xenking/food-delivery/internal/domain/catalog"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/order"
	"github.com/xenking/food-delivery/internal/domain/promotion"
	"github.com/xenking/food-delivery/internal/notify"
	"github.com/xenking/food-delivery/internal/storage/memory"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	mux      *http.ServeMux
	catalog  *memory.CatalogStore
	notifier *notify.Inbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cat := memory.NewCatalogStore()
	cat.AddRestaurant(catalog.Restaurant{
		ID:                 1,
		Name:               "Spice Route",
		DeliveryFee:        decimal.NewFromInt(30),
		MinimumOrderAmount: decimal.NewFromInt(100),
		Open:               true,
	})
	require.NoError(t, cat.AddMenuItem(catalog.MenuItem{
		ID: 10, RestaurantID: 1, Name: "Paneer Tikka", Price: decimal.NewFromInt(50), Available: true,
	}))
	require.NoError(t, cat.AddMenuItem(catalog.MenuItem{
		ID: 11, RestaurantID: 1, Name: "Kulfi", Price: decimal.NewFromInt(40), Available: false,
	}))
	cat.AddDeliveryPerson(catalog.DeliveryPerson{ID: 5, Name: "Ravi"})

	customers := memory.NewCustomerStore()
	customers.Add(customer.New(1, "Asha", "asha@example.com", "555-0101", "12 Lake Road"))

	promotions := memory.NewPromotionStore()
	p, err := promotion.New(promotion.Params{
		Name:       "Welcome",
		Code:       "welcome20",
		Discount:   promotion.Percentage(decimal.NewFromInt(20)),
		ValidFrom:  testNow.Add(-time.Hour),
		ValidUntil: testNow.Add(time.Hour),
		MaxUses:    5,
	})
	require.NoError(t, err)
	require.NoError(t, promotions.Add(p))

	orders := memory.NewOrderStore()
	inbox := notify.NewInbox(0)
	clock := func() time.Time { return testNow }

	orderSvc, err := order.NewService(customers, cat, promotions, orders, inbox, order.WithClock(clock))
	require.NoError(t, err)

	mux := http.NewServeMux()
	New(
		orderSvc,
		customer.NewCartService(customers, cat, nil),
		analytics.NewService(orders, promotions, clock),
		inbox,
	).Register(mux)

	return &testServer{mux: mux, catalog: cat, notifier: inbox}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

// field extracts a top-level string or number field as raw text.
func field(t *testing.T, body []byte, name string) string {
	t.Helper()
	var out string
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		if key != name {
			return d.Skip()
		}
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		out = strings.Trim(raw.String(), `"`)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestCartAndCheckout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "100.00", field(t, w.Body.Bytes(), "subtotal"))

	w = s.do(t, http.MethodPost, "/api/customers/1/orders", `{"payment_method":"UPI","promo_code":"Welcome20"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"id": 1,
		"tracking_number": "FD00000001",
		"customer_id": 1,
		"restaurant_id": 1,
		"status": "Pending",
		"delivery_address": "12 Lake Road",
		"payment_method": "UPI",
		"created_at": "2025-06-15T12:00:00Z",
		"estimated_delivery": "2025-06-15T12:45:00Z",
		"items": [
			{"item_id": 10, "name": "Paneer Tikka", "unit_price": "50.00", "quantity": 2, "line_total": "100.00"}
		],
		"pricing": {
			"subtotal": "100.00",
			"delivery_fee": "30.00",
			"tax": "5.00",
			"discount": "20.00",
			"total": "115.00",
			"promotion_code": "WELCOME20"
		}
	}`, w.Body.String())

	// The cart is emptied by checkout.
	w = s.do(t, http.MethodGet, "/api/customers/1/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.00", field(t, w.Body.Bytes(), "subtotal"))

	w = s.do(t, http.MethodGet, "/api/tracking/fd00000001", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", field(t, w.Body.Bytes(), "id"))

	w = s.do(t, http.MethodGet, "/api/customers/1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", field(t, w.Body.Bytes(), "count"))
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":2}`)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/customers/1/orders", `{}`).Code)

	w := s.do(t, http.MethodPost, "/api/orders/1/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Confirmed", field(t, w.Body.Bytes(), "status"))

	w = s.do(t, http.MethodPost, "/api/orders/1/status", `{"status":"Delivered"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders/1/assign", `{"delivery_person_id":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Out for Delivery", field(t, w.Body.Bytes(), "status"))
	assert.Equal(t, "5", field(t, w.Body.Bytes(), "delivery_person_id"))

	w = s.do(t, http.MethodPost, "/api/orders/1/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders/1/status", `{"status":"out_for_delivery"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders/1/status", `{"status":"Delivered"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/orders/1/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/orders?status=delivered", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", field(t, w.Body.Bytes(), "count"))

	w = s.do(t, http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "135.00", field(t, w.Body.Bytes(), "delivered_revenue"))
	assert.Equal(t, "1", field(t, w.Body.Bytes(), "active_promotions"))

	// Confirmed, assignment and delivery each notify the customer.
	sent, err := s.notifier.Notifications(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, sent, 3)

	w = s.do(t, http.MethodGet, "/api/customers/1/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", field(t, w.Body.Bytes(), "count"))
	assert.Contains(t, w.Body.String(), `"message":"Your order has been delivered! Enjoy your meal!"`)
}

func TestListOrders_DateRange(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":2}`)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/customers/1/orders", `{}`).Code)

	w := s.do(t, http.MethodGet, "/api/orders?from=2025-06-15T11:00:00Z&to=2025-06-15T13:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", field(t, w.Body.Bytes(), "count"))

	w = s.do(t, http.MethodGet, "/api/orders?from=2025-06-15T12:00:00Z&to=2025-06-15T13:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", field(t, w.Body.Bytes(), "count"))
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	for _, tt := range []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"EmptyCart", http.MethodPost, "/api/customers/1/orders", `{}`, http.StatusUnprocessableEntity},
		{"UnknownCustomer", http.MethodGet, "/api/customers/99/cart", "", http.StatusNotFound},
		{"BadCustomerID", http.MethodGet, "/api/customers/abc/cart", "", http.StatusBadRequest},
		{"UnknownOrder", http.MethodGet, "/api/orders/42", "", http.StatusNotFound},
		{"MalformedTracking", http.MethodGet, "/api/tracking/XYZ", "", http.StatusNotFound},
		{"ShortTracking", http.MethodGet, "/api/tracking/FD1", "", http.StatusNotFound},
		{"LongTracking", http.MethodGet, "/api/tracking/FD000000001", "", http.StatusNotFound},
		{"UnknownItem", http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":99}`, http.StatusNotFound},
		{"UnavailableItem", http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":11}`, http.StatusUnprocessableEntity},
		{"ZeroQuantity", http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":0}`, http.StatusBadRequest},
		{"MissingItem", http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1}`, http.StatusBadRequest},
		{"NoCartBody", http.MethodPost, "/api/customers/1/cart/items", "", http.StatusBadRequest},
		{"MalformedBody", http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":`, http.StatusBadRequest},
		{"UnknownStatus", http.MethodPost, "/api/orders/1/status", `{"status":"Lost"}`, http.StatusBadRequest},
		{"BadRange", http.MethodGet, "/api/orders?from=yesterday&to=today", "", http.StatusBadRequest},
		{"HalfRange", http.MethodGet, "/api/orders?from=2025-06-15T11:00:00Z", "", http.StatusBadRequest},
		{"MissingCourier", http.MethodPost, "/api/orders/1/assign", `{}`, http.StatusBadRequest},
		{"BadNotificationsCustomer", http.MethodGet, "/api/customers/0/notifications", "", http.StatusBadRequest},
	} {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, w.Code, atoi(t, field(t, w.Body.Bytes(), "code")))
		})
	}
}

func TestPlaceOrder_EmptyBody(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":2}`).Code)

	w := s.do(t, http.MethodPost, "/api/customers/1/orders", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "FD00000001", field(t, w.Body.Bytes(), "tracking_number"))
	assert.Equal(t, "12 Lake Road", field(t, w.Body.Bytes(), "delivery_address"))

	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":2}`).Code)
	w = s.do(t, http.MethodPost, "/api/customers/1/orders", " \n\t")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPlaceOrder_RestaurantClosed(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":2}`).Code)
	require.NoError(t, s.catalog.SetRestaurantOpen(1, false))

	w := s.do(t, http.MethodPost, "/api/customers/1/orders", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "422", field(t, w.Body.Bytes(), "code"))

	// The cart survives the rejection.
	w = s.do(t, http.MethodGet, "/api/customers/1/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100.00", field(t, w.Body.Bytes(), "subtotal"))

	require.NoError(t, s.catalog.SetRestaurantOpen(1, true))
	w = s.do(t, http.MethodPost, "/api/customers/1/orders", `{}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestBelowMinimum(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":1}`).Code)

	w := s.do(t, http.MethodPost, "/api/customers/1/orders", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// The cart survives a rejected checkout.
	w = s.do(t, http.MethodGet, "/api/customers/1/cart", "")
	assert.Equal(t, "50.00", field(t, w.Body.Bytes(), "subtotal"))
}

func TestRemoveAndClearCart(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":3}`)

	w := s.do(t, http.MethodDelete, "/api/customers/1/cart/items/1/10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.00", field(t, w.Body.Bytes(), "subtotal"))

	s.do(t, http.MethodPost, "/api/customers/1/cart/items", `{"restaurant_id":1,"item_id":10,"quantity":3}`)
	w = s.do(t, http.MethodDelete, "/api/customers/1/cart", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type failingAnalytics struct{}

func (failingAnalytics) Snapshot(context.Context) (analytics.Snapshot, error) {
	return analytics.Snapshot{}, errors.New("connection reset")
}

func TestInternalErrorHidden(t *testing.T) {
	mux := http.NewServeMux()
	New(nil, nil, failingAnalytics{}, nil).Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal server error"}`, w.Body.String())
}

func atoi(t *testing.T, v string) int {
	t.Helper()
	n, err := jx.DecodeStr(v).Int()
	require.NoError(t, err)
	return n
}
