// Package cart holds a customer's unpriced selection of menu items.
package cart

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Line is a single (item, quantity) selection.
type Line struct {
	ItemID   int64
	Quantity int
}

// InvalidQuantityError indicates a non-positive quantity.
type InvalidQuantityError struct {
	ItemID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %d, got %d", e.ItemID, e.Quantity)
}

// RestaurantMismatchError is returned when an item from a second restaurant
// is added to a cart that already holds items from another one.
type RestaurantMismatchError struct {
	CartRestaurantID int64
	RestaurantID     int64
}

func (e *RestaurantMismatchError) Error() string {
	return fmt.Sprintf("cart holds items from restaurant %d, cannot add items from restaurant %d",
		e.CartRestaurantID, e.RestaurantID)
}

// Cart maps menu items of one restaurant to positive quantities.
// The zero value is not usable; create carts with New.
type Cart struct {
	mu           sync.Mutex
	customerID   int64
	restaurantID int64
	items        map[int64]int
	// held counts checkouts taken with Take and not yet settled. While it is
	// non-zero the cart stays bound to restaurantID even when empty.
	held int
}

// New creates an empty cart owned by the customer.
func New(customerID int64) *Cart {
	return &Cart{
		customerID: customerID,
		items:      make(map[int64]int),
	}
}

// CustomerID returns the owning customer.
func (c *Cart) CustomerID() int64 {
	return c.customerID
}

// RestaurantID returns the restaurant the cart is bound to, or 0 when empty.
func (c *Cart) RestaurantID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restaurantID
}

// Add increments the quantity of itemID, creating the entry if needed.
func (c *Cart) Add(restaurantID, itemID int64, qty int) error {
	if qty <= 0 {
		return &InvalidQuantityError{ItemID: itemID, Quantity: qty}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound() && c.restaurantID != restaurantID {
		return &RestaurantMismatchError{CartRestaurantID: c.restaurantID, RestaurantID: restaurantID}
	}
	c.restaurantID = restaurantID
	c.items[itemID] += qty
	return nil
}

// Remove deletes the entry for itemID. It reports whether an entry existed.
func (c *Cart) Remove(itemID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[itemID]; !ok {
		return false
	}
	delete(c.items, itemID)
	c.unbind()
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.unbind()
}

// IsEmpty reports whether the cart has no entries.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Quantity returns the quantity held for itemID, 0 if absent.
func (c *Cart) Quantity(itemID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[itemID]
}

// Snapshot returns the bound restaurant and a copy of the lines ordered by
// item ID.
func (c *Cart) Snapshot() (restaurantID int64, lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restaurantID, c.lines()
}

// Take empties the cart and returns what it held, ordered by item ID.
// A non-empty take must be settled with exactly one Release or Restore;
// until then items may still be added, but only from the same restaurant.
func (c *Cart) Take() (restaurantID int64, lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return 0, nil
	}
	lines = c.lines()
	clear(c.items)
	c.held++
	return c.restaurantID, lines
}

// Release settles a successful take.
func (c *Cart) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.held--
	c.unbind()
}

// Restore settles a failed take by merging the taken lines back into the
// cart. Items added since the take are kept.
func (c *Cart) Restore(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.held--
	for _, l := range lines {
		c.items[l.ItemID] += l.Quantity
	}
	c.unbind()
}

func (c *Cart) bound() bool {
	return len(c.items) > 0 || c.held > 0
}

func (c *Cart) unbind() {
	if !c.bound() {
		c.restaurantID = 0
	}
}

func (c *Cart) lines() []Line {
	lines := make([]Line, 0, len(c.items))
	for id, qty := range c.items {
		lines = append(lines, Line{ItemID: id, Quantity: qty})
	}
	slices.SortFunc(lines, func(a, b Line) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return lines
}
