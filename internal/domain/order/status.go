package order

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of an order.
//
//	Pending ─> Confirmed ─> Preparing ─> OutForDelivery ─> Delivered
//	   │           │            │
//	   └───────────┴────────────┴──> Cancelled
//
// Assigning a delivery person moves Pending, Confirmed or Preparing orders
// straight to OutForDelivery.
type Status int

const (
	// StatusUnknown is the zero value and never a valid state.
	StatusUnknown Status = iota
	StatusPending
	StatusConfirmed
	StatusPreparing
	StatusOutForDelivery
	StatusDelivered
	StatusCancelled
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

var statusNames = map[Status]string{
	StatusPending:        "Pending",
	StatusConfirmed:      "Confirmed",
	StatusPreparing:      "Preparing",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

var transitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
}

// String returns the display name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is one of the defined states.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the transition table allows s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(transitions[s], target)
}

// CanAssign reports whether a delivery person may be assigned in status s.
func (s Status) CanAssign() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusPreparing
}

// Cancellable reports whether an order in status s may be cancelled.
func (s Status) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// ParseStatus parses a status name. Matching ignores case, spaces, dashes and
// underscores, so "Out for Delivery", "out_for_delivery" and "OutForDelivery"
// are equivalent.
func ParseStatus(v string) (Status, error) {
	key := normalizeStatusKey(v)
	for s, name := range statusNames {
		if normalizeStatusKey(name) == key {
			return s, nil
		}
	}
	return StatusUnknown, errors.Errorf("unknown order status %q", v)
}

func normalizeStatusKey(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(v)))
}
