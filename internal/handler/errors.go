package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/food-delivery/internal/domain/cart"
	"github.com/xenking/food-delivery/internal/domain/catalog"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/order"
)

// badRequestError wraps malformed path parameters, queries and bodies.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &badRequestError{err: err}
}

// statusOf maps domain errors to HTTP status codes. Unknown errors are 500.
func statusOf(err error) int {
	var (
		badReq         *badRequestError
		qtyErr         *cart.InvalidQuantityError
		mismatchErr    *cart.RestaurantMismatchError
		customerErr    *customer.NotFoundError
		restaurantErr  *catalog.RestaurantNotFoundError
		itemErr        *catalog.ItemNotFoundError
		courierErr     *catalog.DeliveryPersonNotFoundError
		orderErr       *order.NotFoundError
		transitionErr  *order.InvalidTransitionError
		deliveredErr   *order.AlreadyDeliveredError
		minimumErr     *order.BelowMinimumOrderError
		closedErr      *catalog.RestaurantClosedError
		unavailableErr *catalog.ItemUnavailableError
	)
	switch {
	case errors.As(err, &badReq), errors.As(err, &qtyErr):
		return http.StatusBadRequest
	case errors.As(err, &customerErr),
		errors.As(err, &restaurantErr),
		errors.As(err, &itemErr),
		errors.As(err, &courierErr),
		errors.As(err, &orderErr):
		return http.StatusNotFound
	case errors.As(err, &transitionErr),
		errors.As(err, &deliveredErr),
		errors.As(err, &mismatchErr):
		return http.StatusConflict
	case errors.Is(err, order.ErrEmptyCart),
		errors.As(err, &minimumErr),
		errors.As(err, &closedErr),
		errors.As(err, &unavailableErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response for err. Internal errors are logged and
// their message is not exposed.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, code, e.Bytes())
}

func writeJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
