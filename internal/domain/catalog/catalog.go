// Package catalog is the read-only view of restaurants, menu items and
// delivery staff consumed by cart and order placement.
package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Restaurant holds the fee schedule and open flag used when pricing an order.
type Restaurant struct {
	ID                 int64
	Name               string
	Cuisine            string
	Address            string
	DeliveryFee        decimal.Decimal
	MinimumOrderAmount decimal.Decimal
	Open               bool
}

// MenuItem is a dish offered by a restaurant.
type MenuItem struct {
	ID           int64
	RestaurantID int64
	Name         string
	Category     string
	Price        decimal.Decimal
	Available    bool
}

// DeliveryPerson is a courier that can be assigned to an order.
type DeliveryPerson struct {
	ID      int64
	Name    string
	Contact string
}

// Repository defines lookups against the catalog.
type Repository interface {
	Restaurant(ctx context.Context, id int64) (*Restaurant, error)
	MenuItem(ctx context.Context, restaurantID, itemID int64) (*MenuItem, error)
	DeliveryPerson(ctx context.Context, id int64) (*DeliveryPerson, error)
}

// RestaurantNotFoundError indicates a restaurant ID that does not exist.
type RestaurantNotFoundError struct {
	RestaurantID int64
}

func (e *RestaurantNotFoundError) Error() string {
	return fmt.Sprintf("restaurant %d not found", e.RestaurantID)
}

// RestaurantClosedError indicates the restaurant does not accept orders.
type RestaurantClosedError struct {
	RestaurantID int64
}

func (e *RestaurantClosedError) Error() string {
	return fmt.Sprintf("restaurant %d is closed", e.RestaurantID)
}

// ItemNotFoundError indicates a menu item that does not exist in the restaurant.
type ItemNotFoundError struct {
	RestaurantID int64
	ItemID       int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %d not found in restaurant %d", e.ItemID, e.RestaurantID)
}

// ItemUnavailableError indicates a menu item that currently cannot be ordered.
type ItemUnavailableError struct {
	ItemID int64
	Name   string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item %d (%s) is currently unavailable", e.ItemID, e.Name)
}

// DeliveryPersonNotFoundError indicates an unknown delivery person ID.
type DeliveryPersonNotFoundError struct {
	DeliveryPersonID int64
}

func (e *DeliveryPersonNotFoundError) Error() string {
	return fmt.Sprintf("delivery person %d not found", e.DeliveryPersonID)
}
