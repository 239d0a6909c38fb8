// Package seed loads catalog, customer and promotion fixtures from JSON files.
package seed

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/food-delivery/internal/domain/catalog"
	"github.com/xenking/food-delivery/internal/domain/customer"
	"github.com/xenking/food-delivery/internal/domain/promotion"
)

// Data is the on-disk fixture format. Files ending in .gz are gzip
// compressed.
type Data struct {
	Restaurants    []Restaurant     `json:"restaurants"`
	DeliveryPeople []DeliveryPerson `json:"delivery_people"`
	Customers      []Customer       `json:"customers"`
	Promotions     []Promotion      `json:"promotions"`
}

type Restaurant struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Cuisine            string          `json:"cuisine"`
	Address            string          `json:"address"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	MinimumOrderAmount decimal.Decimal `json:"minimum_order_amount"`
	// Closed is inverted so that omitted means open.
	Closed bool       `json:"closed"`
	Menu   []MenuItem `json:"menu"`
}

type MenuItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	// Unavailable is inverted so that omitted means available.
	Unavailable bool `json:"unavailable"`
}

type DeliveryPerson struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

// Promotion uses the two-field discount representation; exactly one of
// DiscountPercentage and DiscountAmount must be set. The validity window is
// either explicit or ValidDays long starting at load time.
type Promotion struct {
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	MinimumOrderAmount decimal.Decimal `json:"minimum_order_amount"`
	ValidFrom          *time.Time      `json:"valid_from,omitempty"`
	ValidUntil         *time.Time      `json:"valid_until,omitempty"`
	ValidDays          int             `json:"valid_days,omitempty"`
	MaxUses            int             `json:"max_uses"`
}

// Load reads a fixture file, decompressing it when the name ends in .gz.
func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	d, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return d, nil
}

// Decode parses fixture JSON.
func Decode(r io.Reader) (*Data, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d Data
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFiles reads the files concurrently and merges them in argument order.
func LoadFiles(ctx context.Context, paths ...string) (*Data, error) {
	parts := make([]*Data, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := Load(p)
			if err != nil {
				return err
			}
			parts[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Data{}
	for _, d := range parts {
		merged.Merge(d)
	}
	return merged, nil
}

// Merge appends other's records to d.
func (d *Data) Merge(other *Data) {
	d.Restaurants = append(d.Restaurants, other.Restaurants...)
	d.DeliveryPeople = append(d.DeliveryPeople, other.DeliveryPeople...)
	d.Customers = append(d.Customers, other.Customers...)
	d.Promotions = append(d.Promotions, other.Promotions...)
}

// Set is a fixture converted to domain values.
type Set struct {
	Restaurants    []catalog.Restaurant
	MenuItems      []catalog.MenuItem
	DeliveryPeople []catalog.DeliveryPerson
	Customers      []*customer.Customer
	Promotions     []*promotion.Promotion
}

// Build validates the fixture and converts it to domain values. Relative
// promotion windows start at now.
func (d *Data) Build(now time.Time) (*Set, error) {
	s := &Set{}

	restaurants := make(map[int64]bool, len(d.Restaurants))
	items := make(map[int64]bool)
	for _, r := range d.Restaurants {
		if r.ID <= 0 {
			return nil, errors.Errorf("restaurant %q: invalid id %d", r.Name, r.ID)
		}
		if restaurants[r.ID] {
			return nil, errors.Errorf("duplicate restaurant id %d", r.ID)
		}
		if r.DeliveryFee.IsNegative() || r.MinimumOrderAmount.IsNegative() {
			return nil, errors.Errorf("restaurant %d: negative fee or minimum", r.ID)
		}
		restaurants[r.ID] = true
		s.Restaurants = append(s.Restaurants, catalog.Restaurant{
			ID:                 r.ID,
			Name:               r.Name,
			Cuisine:            r.Cuisine,
			Address:            r.Address,
			DeliveryFee:        r.DeliveryFee,
			MinimumOrderAmount: r.MinimumOrderAmount,
			Open:               !r.Closed,
		})

		for _, it := range r.Menu {
			if it.ID <= 0 || items[it.ID] {
				return nil, errors.Errorf("restaurant %d: invalid or duplicate menu item id %d", r.ID, it.ID)
			}
			if it.Price.IsNegative() {
				return nil, errors.Errorf("menu item %d: negative price", it.ID)
			}
			items[it.ID] = true
			s.MenuItems = append(s.MenuItems, catalog.MenuItem{
				ID:           it.ID,
				RestaurantID: r.ID,
				Name:         it.Name,
				Category:     it.Category,
				Price:        it.Price,
				Available:    !it.Unavailable,
			})
		}
	}

	for _, dp := range d.DeliveryPeople {
		if dp.ID <= 0 {
			return nil, errors.Errorf("delivery person %q: invalid id %d", dp.Name, dp.ID)
		}
		s.DeliveryPeople = append(s.DeliveryPeople, catalog.DeliveryPerson(dp))
	}

	for _, c := range d.Customers {
		if c.ID <= 0 {
			return nil, errors.Errorf("customer %q: invalid id %d", c.Name, c.ID)
		}
		s.Customers = append(s.Customers, customer.New(c.ID, c.Name, c.Email, c.Contact, c.Address))
	}

	for _, p := range d.Promotions {
		promo, err := p.build(now)
		if err != nil {
			return nil, err
		}
		s.Promotions = append(s.Promotions, promo)
	}

	return s, nil
}

func (p Promotion) build(now time.Time) (*promotion.Promotion, error) {
	discount, err := promotion.DiscountFromFields(p.DiscountPercentage, p.DiscountAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "promotion %s", p.Code)
	}

	from := now
	if p.ValidFrom != nil {
		from = *p.ValidFrom
	}
	var until time.Time
	switch {
	case p.ValidUntil != nil:
		until = *p.ValidUntil
	case p.ValidDays > 0:
		until = from.AddDate(0, 0, p.ValidDays)
	default:
		return nil, errors.Errorf("promotion %s: valid_until or valid_days is required", p.Code)
	}

	return promotion.New(promotion.Params{
		Name:               p.Name,
		Description:        p.Description,
		Code:               p.Code,
		Discount:           discount,
		MinimumOrderAmount: p.MinimumOrderAmount,
		ValidFrom:          from,
		ValidUntil:         until,
		MaxUses:            p.MaxUses,
	})
}
