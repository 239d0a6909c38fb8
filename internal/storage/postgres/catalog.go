package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/food-delivery/internal/domain/catalog"
)

const (
	getRestaurantSQL = `SELECT id, name, cuisine, address, delivery_fee, minimum_order_amount, open
		FROM restaurants WHERE id = $1`

	getMenuItemSQL = `SELECT id, restaurant_id, name, category, price, available
		FROM menu_items WHERE restaurant_id = $1 AND id = $2`

	getDeliveryPersonSQL = `SELECT id, name, contact FROM delivery_people WHERE id = $1`

	upsertRestaurantSQL = `INSERT INTO restaurants (id, name, cuisine, address, delivery_fee, minimum_order_amount, open)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			cuisine = EXCLUDED.cuisine,
			address = EXCLUDED.address,
			delivery_fee = EXCLUDED.delivery_fee,
			minimum_order_amount = EXCLUDED.minimum_order_amount,
			open = EXCLUDED.open`

	upsertMenuItemSQL = `INSERT INTO menu_items (id, restaurant_id, name, category, price, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			restaurant_id = EXCLUDED.restaurant_id,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			available = EXCLUDED.available`

	upsertDeliveryPersonSQL = `INSERT INTO delivery_people (id, name, contact)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, contact = EXCLUDED.contact`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Restaurant returns a restaurant by ID or *catalog.RestaurantNotFoundError.
func (r *CatalogRepository) Restaurant(ctx context.Context, id int64) (*catalog.Restaurant, error) {
	rows, err := r.pool.Query(ctx, getRestaurantSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting restaurant %d: %w", id, err)
	}

	rest, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[catalog.Restaurant])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &catalog.RestaurantNotFoundError{RestaurantID: id}
		}
		return nil, fmt.Errorf("getting restaurant %d: %w", id, err)
	}
	return &rest, nil
}

// MenuItem returns a restaurant's menu item. An unknown restaurant yields
// *catalog.RestaurantNotFoundError, an unknown item
// *catalog.ItemNotFoundError.
func (r *CatalogRepository) MenuItem(ctx context.Context, restaurantID, itemID int64) (*catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, restaurantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %d: %w", itemID, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[catalog.MenuItem])
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("getting menu item %d: %w", itemID, err)
	}

	if _, err := r.Restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return nil, &catalog.ItemNotFoundError{RestaurantID: restaurantID, ItemID: itemID}
}

// DeliveryPerson returns a delivery person by ID or
// *catalog.DeliveryPersonNotFoundError.
func (r *CatalogRepository) DeliveryPerson(ctx context.Context, id int64) (*catalog.DeliveryPerson, error) {
	rows, err := r.pool.Query(ctx, getDeliveryPersonSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting delivery person %d: %w", id, err)
	}

	dp, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[catalog.DeliveryPerson])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &catalog.DeliveryPersonNotFoundError{DeliveryPersonID: id}
		}
		return nil, fmt.Errorf("getting delivery person %d: %w", id, err)
	}
	return &dp, nil
}

// UpsertRestaurant inserts or replaces a restaurant.
func (r *CatalogRepository) UpsertRestaurant(ctx context.Context, rest catalog.Restaurant) error {
	_, err := r.pool.Exec(ctx, upsertRestaurantSQL,
		rest.ID, rest.Name, rest.Cuisine, rest.Address, rest.DeliveryFee, rest.MinimumOrderAmount, rest.Open,
	)
	if err != nil {
		return fmt.Errorf("upserting restaurant %d: %w", rest.ID, err)
	}
	return nil
}

// UpsertMenuItem inserts or replaces a menu item.
func (r *CatalogRepository) UpsertMenuItem(ctx context.Context, it catalog.MenuItem) error {
	_, err := r.pool.Exec(ctx, upsertMenuItemSQL,
		it.ID, it.RestaurantID, it.Name, it.Category, it.Price, it.Available,
	)
	if err != nil {
		return fmt.Errorf("upserting menu item %d: %w", it.ID, err)
	}
	return nil
}

// UpsertDeliveryPerson inserts or replaces a delivery person.
func (r *CatalogRepository) UpsertDeliveryPerson(ctx context.Context, dp catalog.DeliveryPerson) error {
	_, err := r.pool.Exec(ctx, upsertDeliveryPersonSQL, dp.ID, dp.Name, dp.Contact)
	if err != nil {
		return fmt.Errorf("upserting delivery person %d: %w", dp.ID, err)
	}
	return nil
}
