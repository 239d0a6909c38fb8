// Package promotion defines coded discount rules with a validity window and a
// redemption cap.
package promotion

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercentage takes a percentage of the order subtotal.
	KindPercentage Kind = "percentage"
	// KindFlat takes a fixed amount off the order.
	KindFlat Kind = "flat"
)

var (
	// ErrNotFound is returned when no promotion exists for a code.
	ErrNotFound = errors.New("promotion not found")
	// ErrUsageLimitReached is returned by Redeem when the promotion has no
	// redemptions left.
	ErrUsageLimitReached = errors.New("promotion usage limit reached")
	// ErrDuplicateCode is returned when a code is registered twice.
	ErrDuplicateCode = errors.New("promotion code already exists")
)

var hundred = decimal.NewFromInt(100)

// Discount is a tagged discount value: either a percentage of the subtotal or
// a flat amount.
type Discount struct {
	Kind  Kind
	Value decimal.Decimal
}

// Percentage returns a discount of pct percent of the subtotal.
func Percentage(pct decimal.Decimal) Discount {
	return Discount{Kind: KindPercentage, Value: pct}
}

// Flat returns a fixed-amount discount.
func Flat(amount decimal.Decimal) Discount {
	return Discount{Kind: KindFlat, Value: amount}
}

// Amount returns the uncapped discount for the subtotal.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	switch d.Kind {
	case KindPercentage:
		return subtotal.Mul(d.Value).Div(hundred)
	case KindFlat:
		return d.Value
	default:
		return decimal.Zero
	}
}

// Validate checks the discount value against its kind.
func (d Discount) Validate() error {
	switch d.Kind {
	case KindPercentage:
		if !d.Value.IsPositive() || d.Value.GreaterThan(hundred) {
			return errors.Errorf("percentage must be in (0, 100], got %s", d.Value)
		}
	case KindFlat:
		if !d.Value.IsPositive() {
			return errors.Errorf("flat amount must be positive, got %s", d.Value)
		}
	default:
		return errors.Errorf("unsupported discount kind: %q", d.Kind)
	}
	return nil
}

// Promotion is a discount rule addressed by a case-insensitive code.
type Promotion struct {
	ID                 int64
	Name               string
	Description        string
	Code               string
	Discount           Discount
	MinimumOrderAmount decimal.Decimal
	ValidFrom          time.Time
	ValidUntil         time.Time
	MaxUses            int
	Uses               int
}

// Params holds the input for New.
type Params struct {
	Name               string
	Description        string
	Code               string
	Discount           Discount
	MinimumOrderAmount decimal.Decimal
	ValidFrom          time.Time
	ValidUntil         time.Time
	MaxUses            int
}

// New validates params and builds a promotion with zero redemptions.
func New(p Params) (*Promotion, error) {
	code := NormalizeCode(p.Code)
	if code == "" {
		return nil, errors.New("promotion code is required")
	}
	if err := p.Discount.Validate(); err != nil {
		return nil, errors.Wrapf(err, "promotion %s", code)
	}
	if p.MinimumOrderAmount.IsNegative() {
		return nil, errors.Errorf("promotion %s: minimum order amount is negative", code)
	}
	if p.ValidUntil.Before(p.ValidFrom) {
		return nil, errors.Errorf("promotion %s: validity window ends before it starts", code)
	}
	if p.MaxUses <= 0 {
		return nil, errors.Errorf("promotion %s: max uses must be positive", code)
	}

	return &Promotion{
		Name:               p.Name,
		Description:        p.Description,
		Code:               code,
		Discount:           p.Discount,
		MinimumOrderAmount: p.MinimumOrderAmount,
		ValidFrom:          p.ValidFrom,
		ValidUntil:         p.ValidUntil,
		MaxUses:            p.MaxUses,
	}, nil
}

// IsValid reports whether now lies in the validity window and redemptions
// remain.
func (p *Promotion) IsValid(now time.Time) bool {
	return p.validityReason(now) == ""
}

func (p *Promotion) validityReason(now time.Time) Reason {
	switch {
	case now.Before(p.ValidFrom):
		return ReasonNotStarted
	case now.After(p.ValidUntil):
		return ReasonExpired
	case p.Uses >= p.MaxUses:
		return ReasonUsageLimit
	}
	return ""
}

// NormalizeCode returns the canonical form of a promotion code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Repository provides lookup and redemption of promotions.
type Repository interface {
	// FindByCode returns a snapshot of the promotion or ErrNotFound.
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	// Redeem increments the redemption count, failing with
	// ErrUsageLimitReached when the cap has been reached.
	Redeem(ctx context.Context, code string) error
	// List returns all promotions.
	List(ctx context.Context) ([]Promotion, error)
}

// DiscountFromFields converts the two-field representation used by seed files
// and the database (percentage, flat amount) into a tagged Discount. Exactly
// one of the values must be non-zero.
func DiscountFromFields(percentage, amount decimal.Decimal) (Discount, error) {
	switch {
	case !percentage.IsZero() && !amount.IsZero():
		return Discount{}, errors.New("both percentage and flat amount are set")
	case !percentage.IsZero():
		return Percentage(percentage), nil
	case !amount.IsZero():
		return Flat(amount), nil
	default:
		return Discount{}, errors.New("neither percentage nor flat amount is set")
	}
}

// Fields is the inverse of DiscountFromFields.
func (d Discount) Fields() (percentage, amount decimal.Decimal) {
	if d.Kind == KindPercentage {
		return d.Value, decimal.Zero
	}
	return decimal.Zero, d.Value
}
