package handler

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/food-delivery/internal/domain/analytics"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/order"
)

// Money is rendered as a string with two decimals to keep it exact.
func encodeMoney(e *jx.Encoder, field string, d decimal.Decimal) {
	e.FieldStart(field)
	e.Str(d.StringFixed(2))
}

func encodeTime(e *jx.Encoder, field string, t time.Time) {
	e.FieldStart(field)
	e.Str(t.Format(time.RFC3339))
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("tracking_number")
	e.Str(o.TrackingNumber)
	e.FieldStart("customer_id")
	e.Int64(o.CustomerID)
	e.FieldStart("restaurant_id")
	e.Int64(o.RestaurantID)
	e.FieldStart("status")
	e.Str(o.Status().String())
	if id, ok := o.DeliveryPersonID(); ok {
		e.FieldStart("delivery_person_id")
		e.Int64(id)
	}
	e.FieldStart("delivery_address")
	e.Str(o.DeliveryAddress)
	e.FieldStart("payment_method")
	e.Str(o.PaymentMethod)
	if o.SpecialInstructions != "" {
		e.FieldStart("special_instructions")
		e.Str(o.SpecialInstructions)
	}
	encodeTime(e, "created_at", o.CreatedAt)
	encodeTime(e, "estimated_delivery", o.EstimatedDelivery)

	e.FieldStart("items")
	e.ArrStart()
	for _, l := range o.Lines {
		e.ObjStart()
		e.FieldStart("item_id")
		e.Int64(l.ItemID)
		e.FieldStart("name")
		e.Str(l.Name)
		encodeMoney(e, "unit_price", l.UnitPrice)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		encodeMoney(e, "line_total", l.Total())
		e.ObjEnd()
	}
	e.ArrEnd()

	p := o.Pricing.Rounded()
	e.FieldStart("pricing")
	e.ObjStart()
	encodeMoney(e, "subtotal", p.Subtotal)
	encodeMoney(e, "delivery_fee", p.DeliveryFee)
	encodeMoney(e, "tax", p.Tax)
	encodeMoney(e, "discount", p.Discount)
	encodeMoney(e, "total", p.Total)
	if p.PromotionApplied() {
		e.FieldStart("promotion_code")
		e.Str(p.PromotionCode)
	}
	e.ObjEnd()

	e.ObjEnd()
}

func encodeOrders(e *jx.Encoder, orders []*order.Order) {
	e.ObjStart()
	e.FieldStart("orders")
	e.ArrStart()
	for _, o := range orders {
		encodeOrder(e, o)
	}
	e.ArrEnd()
	e.FieldStart("count")
	e.Int(len(orders))
	e.ObjEnd()
}

func encodeCart(e *jx.Encoder, v *customer.CartView) {
	e.ObjStart()
	e.FieldStart("customer_id")
	e.Int64(v.CustomerID)
	if v.RestaurantID != 0 {
		e.FieldStart("restaurant_id")
		e.Int64(v.RestaurantID)
	}
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range v.Lines {
		e.ObjStart()
		e.FieldStart("item_id")
		e.Int64(l.ItemID)
		e.FieldStart("name")
		e.Str(l.Name)
		encodeMoney(e, "unit_price", l.UnitPrice)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		encodeMoney(e, "line_total", l.LineTotal)
		e.ObjEnd()
	}
	e.ArrEnd()
	encodeMoney(e, "subtotal", v.Subtotal)
	e.ObjEnd()
}

func encodeSnapshot(e *jx.Encoder, s analytics.Snapshot) {
	e.ObjStart()
	e.FieldStart("total_orders")
	e.Int(s.TotalOrders)
	e.FieldStart("orders_by_status")
	e.ObjStart()
	for _, st := range order.Statuses {
		e.FieldStart(st.String())
		e.Int(s.ByStatus[st])
	}
	e.ObjEnd()
	e.FieldStart("delivered_orders")
	e.Int(s.DeliveredOrders)
	encodeMoney(e, "delivered_revenue", s.DeliveredRevenue)
	encodeMoney(e, "pending_value", s.PendingValue)
	encodeMoney(e, "total_revenue", s.TotalRevenue)
	encodeMoney(e, "average_order_value", s.AverageOrderValue)
	e.FieldStart("orders_today")
	e.Int(s.OrdersToday)
	e.FieldStart("active_promotions")
	e.Int(s.ActivePromotions)
	encodeTime(e, "generated_at", s.GeneratedAt)
	e.ObjEnd()
}
