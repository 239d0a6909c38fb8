package promotion

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Reason explains why a promotion does not apply.
type Reason string

// Reasons reported by Check and by order placement.
const (
	ReasonNotFound     Reason = "not_found"
	ReasonNotStarted   Reason = "not_started"
	ReasonExpired      Reason = "expired"
	ReasonUsageLimit   Reason = "usage_limit_reached"
	ReasonBelowMinimum Reason = "below_minimum_order"
)

// InvalidError describes a promotion that cannot be applied. Order placement
// treats it as a soft condition and proceeds at full price.
type InvalidError struct {
	Code   string
	Reason Reason
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("promotion %s not applicable: %s", e.Code, e.Reason)
}

// Check reports whether p applies to an order with the given subtotal at now.
// It returns nil when the promotion applies and *InvalidError otherwise.
func Check(p *Promotion, subtotal decimal.Decimal, now time.Time) error {
	if reason := p.validityReason(now); reason != "" {
		return &InvalidError{Code: p.Code, Reason: reason}
	}
	if subtotal.LessThan(p.MinimumOrderAmount) {
		return &InvalidError{Code: p.Code, Reason: ReasonBelowMinimum}
	}
	return nil
}
