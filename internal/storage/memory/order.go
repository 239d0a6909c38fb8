// Package memory provides in-process implementations of the domain
// repositories.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/food-delivery/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore keeps orders in memory and owns the order ID counter.
type OrderStore struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]*order.Order
	ids    []int64
}

// NewOrderStore returns an empty OrderStore. The first order gets ID 1.
func NewOrderStore() *OrderStore {
	return &OrderStore{byID: make(map[int64]*order.Order)}
}

// Insert implements order.Repository.
func (s *OrderStore) Insert(_ context.Context, build func(id int64) (*order.Order, error)) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.lastID + 1
	o, err := build(id)
	if err != nil {
		return nil, err
	}
	s.lastID = id
	s.byID[id] = o.Clone()
	s.ids = append(s.ids, id)
	return o.Clone(), nil
}

// Get implements order.Repository.
func (s *OrderStore) Get(_ context.Context, id int64) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, &order.NotFoundError{OrderID: id}
	}
	return o.Clone(), nil
}

// Update implements order.Repository.
func (s *OrderStore) Update(_ context.Context, id int64, fn func(o *order.Order) error) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, &order.NotFoundError{OrderID: id}
	}
	next := o.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.byID[id] = next
	return next.Clone(), nil
}

// List implements order.Repository.
func (s *OrderStore) List(_ context.Context) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*order.Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

// Len returns the number of stored orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
