// Package customer describes the customers that own carts and place orders.
package customer

import (
	"context"
	"fmt"

	"github.com/xenking/food-delivery/internal/domain/cart"
)

// Customer is a registered customer together with the cart they own.
type Customer struct {
	ID      int64
	Name    string
	Email   string
	Contact string
	Address string
	Cart    *cart.Cart
}

// New creates a customer with an empty cart.
func New(id int64, name, email, contact, address string) *Customer {
	return &Customer{
		ID:      id,
		Name:    name,
		Email:   email,
		Contact: contact,
		Address: address,
		Cart:    cart.New(id),
	}
}

// Repository looks up customers by ID.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
}

// NotFoundError indicates an unknown customer ID.
type NotFoundError struct {
	CustomerID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("customer %d not found", e.CustomerID)
}
