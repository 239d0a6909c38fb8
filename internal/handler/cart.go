package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ViewCart returns the customer's cart priced at current menu prices.
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, customerID)
}

// AddCartItem adds a menu item to the customer's cart.
//
//	{"restaurant_id": 1, "item_id": 2, "quantity": 3}
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}

	var restaurantID, itemID int64
	qty := 1
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "restaurant_id":
			restaurantID, err = d.Int64()
		case "item_id":
			itemID, err = d.Int64()
		case "quantity":
			qty, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	if restaurantID <= 0 || itemID <= 0 {
		fail(w, r, badRequest(errors.New("restaurant_id and item_id are required")))
		return
	}

	if err := h.carts.AddItem(r.Context(), customerID, restaurantID, itemID, qty); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, customerID)
}

// RemoveCartItem drops a menu item from the customer's cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}
	restaurantID, err := pathID(r, "restaurantID")
	if err != nil {
		fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := h.carts.RemoveItem(r.Context(), customerID, restaurantID, itemID); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, customerID)
}

// ClearCart empties the customer's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerID")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.carts.Clear(r.Context(), customerID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, customerID int64) {
	view, err := h.carts.View(r.Context(), customerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeCart(e, view)
	writeJSON(w, http.StatusOK, e.Bytes())
}
