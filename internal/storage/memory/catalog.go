package memory

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/food-delivery/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogStore)(nil)

type itemKey struct {
	restaurantID int64
	itemID       int64
}

// CatalogStore keeps restaurants, menus and delivery staff in memory.
type CatalogStore struct {
	mu          sync.RWMutex
	restaurants map[int64]catalog.Restaurant
	items       map[itemKey]catalog.MenuItem
	couriers    map[int64]catalog.DeliveryPerson
}

// NewCatalogStore returns an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		restaurants: make(map[int64]catalog.Restaurant),
		items:       make(map[itemKey]catalog.MenuItem),
		couriers:    make(map[int64]catalog.DeliveryPerson),
	}
}

// AddRestaurant stores or replaces a restaurant.
func (s *CatalogStore) AddRestaurant(r catalog.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants[r.ID] = r
}

// AddMenuItem stores or replaces a menu item. The restaurant must exist.
func (s *CatalogStore) AddMenuItem(it catalog.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.restaurants[it.RestaurantID]; !ok {
		return errors.Wrapf(&catalog.RestaurantNotFoundError{RestaurantID: it.RestaurantID}, "add menu item %d", it.ID)
	}
	s.items[itemKey{it.RestaurantID, it.ID}] = it
	return nil
}

// AddDeliveryPerson stores or replaces a delivery person.
func (s *CatalogStore) AddDeliveryPerson(dp catalog.DeliveryPerson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couriers[dp.ID] = dp
}

// SetItemPrice changes a menu item's price. Placed orders keep the price they
// were placed at.
func (s *CatalogStore) SetItemPrice(restaurantID, itemID int64, price decimal.Decimal) error {
	return s.updateItem(restaurantID, itemID, func(it *catalog.MenuItem) { it.Price = price })
}

// SetItemAvailable toggles a menu item's availability.
func (s *CatalogStore) SetItemAvailable(restaurantID, itemID int64, available bool) error {
	return s.updateItem(restaurantID, itemID, func(it *catalog.MenuItem) { it.Available = available })
}

// SetRestaurantOpen toggles whether a restaurant accepts orders.
func (s *CatalogStore) SetRestaurantOpen(id int64, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return &catalog.RestaurantNotFoundError{RestaurantID: id}
	}
	r.Open = open
	s.restaurants[id] = r
	return nil
}

func (s *CatalogStore) updateItem(restaurantID, itemID int64, fn func(it *catalog.MenuItem)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := itemKey{restaurantID, itemID}
	it, ok := s.items[key]
	if !ok {
		return &catalog.ItemNotFoundError{RestaurantID: restaurantID, ItemID: itemID}
	}
	fn(&it)
	s.items[key] = it
	return nil
}

// Restaurant implements catalog.Repository.
func (s *CatalogStore) Restaurant(_ context.Context, id int64) (*catalog.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, &catalog.RestaurantNotFoundError{RestaurantID: id}
	}
	return &r, nil
}

// MenuItem implements catalog.Repository.
func (s *CatalogStore) MenuItem(_ context.Context, restaurantID, itemID int64) (*catalog.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.restaurants[restaurantID]; !ok {
		return nil, &catalog.RestaurantNotFoundError{RestaurantID: restaurantID}
	}
	it, ok := s.items[itemKey{restaurantID, itemID}]
	if !ok {
		return nil, &catalog.ItemNotFoundError{RestaurantID: restaurantID, ItemID: itemID}
	}
	return &it, nil
}

// DeliveryPerson implements catalog.Repository.
func (s *CatalogStore) DeliveryPerson(_ context.Context, id int64) (*catalog.DeliveryPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dp, ok := s.couriers[id]
	if !ok {
		return nil, &catalog.DeliveryPersonNotFoundError{DeliveryPersonID: id}
	}
	return &dp, nil
}
