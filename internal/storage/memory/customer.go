package memory

import (
	"context"
	"sync"

	"github.com/xenking/food-delivery/internal/domain/customer"
)

var _ customer.Repository = (*CustomerStore)(nil)

// CustomerStore keeps customers in memory. Returned customers share their
// cart with the store.
type CustomerStore struct {
	mu   sync.RWMutex
	byID map[int64]*customer.Customer
}

// NewCustomerStore returns an empty CustomerStore.
func NewCustomerStore() *CustomerStore {
	return &CustomerStore{byID: make(map[int64]*customer.Customer)}
}

// Add stores or replaces a customer.
func (s *CustomerStore) Add(c *customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = c
}

// Get implements customer.Repository.
func (s *CustomerStore) Get(_ context.Context, id int64) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, &customer.NotFoundError{CustomerID: id}
	}
	return c, nil
}
