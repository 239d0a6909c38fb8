package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/food-delivery/internal/domain/order"
)

// ListNotifications returns the recent notifications of a customer, oldest
// first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}
	list, err := h.notifications.Notifications(r.Context(), customerID)
	if err != nil {
		fail(w, r, err)
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeNotifications(e, list)
	writeJSON(w, http.StatusOK, e.Bytes())
}

func encodeNotifications(e *jx.Encoder, list []order.Notification) {
	e.ObjStart()
	e.FieldStart("notifications")
	e.ArrStart()
	for _, n := range list {
		e.ObjStart()
		e.FieldStart("kind")
		e.Str(string(n.Kind))
		e.FieldStart("order_id")
		e.Int64(n.OrderID)
		e.FieldStart("tracking_number")
		e.Str(n.TrackingNumber)
		e.FieldStart("status")
		e.Str(n.Status.String())
		e.FieldStart("message")
		e.Str(n.Message)
		encodeTime(e, "at", n.At)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("count")
	e.Int(len(list))
	e.ObjEnd()
}
