package customer

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/food-delivery/internal/domain/catalog"
)

// CartLine is a priced cart entry for display.
type CartLine struct {
	ItemID    int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// CartView is the current content of a customer's cart priced at current
// menu prices.
type CartView struct {
	CustomerID   int64
	RestaurantID int64
	Lines        []CartLine
	Subtotal     decimal.Decimal
}

// CartService validates cart mutations against the catalog.
type CartService struct {
	customers Repository
	catalog   catalog.Repository
	lg        *zap.Logger
}

// NewCartService creates a CartService. A nil logger discards output.
func NewCartService(customers Repository, cat catalog.Repository, lg *zap.Logger) *CartService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &CartService{
		customers: customers,
		catalog:   cat,
		lg:        lg,
	}
}

// AddItem adds qty of the menu item to the customer's cart after checking that
// the restaurant and item exist and the item is available.
func (s *CartService) AddItem(ctx context.Context, customerID, restaurantID, itemID int64, qty int) error {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if _, err := s.catalog.Restaurant(ctx, restaurantID); err != nil {
		return err
	}
	item, err := s.catalog.MenuItem(ctx, restaurantID, itemID)
	if err != nil {
		return err
	}
	if !item.Available {
		return &catalog.ItemUnavailableError{ItemID: item.ID, Name: item.Name}
	}
	if err := c.Cart.Add(restaurantID, itemID, qty); err != nil {
		return err
	}

	s.lg.Debug("Item added to cart",
		zap.Int64("customer_id", customerID),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", qty),
	)
	return nil
}

// RemoveItem drops the menu item from the customer's cart. Removing an item
// that is not in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, customerID, restaurantID, itemID int64) error {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if _, err := s.catalog.MenuItem(ctx, restaurantID, itemID); err != nil {
		return err
	}
	c.Cart.Remove(itemID)
	return nil
}

// Clear empties the customer's cart.
func (s *CartService) Clear(ctx context.Context, customerID int64) error {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return err
	}
	c.Cart.Clear()
	return nil
}

// View prices the customer's cart at current menu prices.
func (s *CartService) View(ctx context.Context, customerID int64) (*CartView, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	restaurantID, lines := c.Cart.Snapshot()
	view := &CartView{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Lines:        make([]CartLine, 0, len(lines)),
		Subtotal:     decimal.Zero,
	}
	for _, l := range lines {
		item, err := s.catalog.MenuItem(ctx, restaurantID, l.ItemID)
		if err != nil {
			return nil, errors.Wrapf(err, "price cart item %d", l.ItemID)
		}
		total := item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Lines = append(view.Lines, CartLine{
			ItemID:    l.ItemID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  l.Quantity,
			LineTotal: total,
		})
		view.Subtotal = view.Subtotal.Add(total)
	}
	return view, nil
}
