package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/food-delivery/internal/domain/order"
)

// PlaceOrder checks out the customer's cart.
//
//	{"delivery_address": "...", "payment_method": "UPI", "special_instructions": "...", "promo_code": "WELCOME20"}
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}

	req := order.PlaceOrderRequest{CustomerID: customerID}
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "delivery_address":
			req.DeliveryAddress, err = d.Str()
		case "payment_method":
			req.PaymentMethod, err = d.Str()
		case "special_instructions":
			req.SpecialInstructions, err = d.Str()
		case "promo_code":
			req.PromoCode, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, http.StatusCreated, o)
}

// ListCustomerOrders returns the customer's orders, newest first.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}
	orders, err := h.orders.ListByCustomer(r.Context(), customerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrders(w, orders)
}

// ListOrders returns all orders, optionally filtered by ?status= or by a
// creation window ?from=&to= given as RFC 3339 times.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, hasFrom, err := queryTime(r, "from")
	if err != nil {
		fail(w, r, err)
		return
	}
	to, hasTo, err := queryTime(r, "to")
	if err != nil {
		fail(w, r, err)
		return
	}
	status := r.URL.Query().Get("status")

	var orders []*order.Order
	switch {
	case status != "" && (hasFrom || hasTo):
		err = badRequest(errors.New("status and date range filters are mutually exclusive"))
	case status != "":
		var s order.Status
		if s, err = order.ParseStatus(status); err != nil {
			err = badRequest(err)
			break
		}
		orders, err = h.orders.ListByStatus(ctx, s)
	case hasFrom != hasTo:
		err = badRequest(errors.New("both from and to are required"))
	case hasFrom:
		orders, err = h.orders.ListByDateRange(ctx, from, to)
	default:
		orders, err = h.orders.ListAll(ctx)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrders(w, orders)
}

// GetOrder returns an order by ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		fail(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, http.StatusOK, o)
}

// TrackOrder returns an order by tracking number.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByTrackingNumber(r.Context(), r.PathValue("trackingNumber"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, http.StatusOK, o)
}

// UpdateStatus moves an order to the requested status.
//
//	{"status": "Out for Delivery"}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		fail(w, r, err)
		return
	}

	var raw string
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		var err error
		raw, err = d.Str()
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	target, err := order.ParseStatus(raw)
	if err != nil {
		fail(w, r, badRequest(err))
		return
	}

	o, err := h.orders.TransitionStatus(r.Context(), id, target)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, http.StatusOK, o)
}

// AssignDeliveryPerson hands the order to a courier.
//
//	{"delivery_person_id": 1}
func (h *Handler) AssignDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		fail(w, r, err)
		return
	}

	var courierID int64
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "delivery_person_id" {
			return d.Skip()
		}
		var err error
		courierID, err = d.Int64()
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	if courierID <= 0 {
		fail(w, r, badRequest(errors.New("delivery_person_id is required")))
		return
	}

	o, err := h.orders.AssignDeliveryPerson(r.Context(), id, courierID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, http.StatusOK, o)
}

// CancelOrder cancels an order that has not left the restaurant.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		fail(w, r, err)
		return
	}
	o, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, http.StatusOK, o)
}

func writeOrder(w http.ResponseWriter, code int, o *order.Order) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeOrder(e, o)
	writeJSON(w, code, e.Bytes())
}

func writeOrders(w http.ResponseWriter, orders []*order.Order) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeOrders(e, orders)
	writeJSON(w, http.StatusOK, e.Bytes())
}
