package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/food-delivery/internal/domain/promotion"
)

const (
	promotionColumns = `id, code, name, description, discount_percentage, discount_amount,
		minimum_order_amount, valid_from, valid_until, max_uses, uses`

	getPromotionByCodeSQL = `SELECT ` + promotionColumns + ` FROM promotions WHERE UPPER(code) = UPPER($1)`

	listPromotionsSQL = `SELECT ` + promotionColumns + ` FROM promotions ORDER BY code`

	listPromotionCodesSQL = `SELECT UPPER(code) FROM promotions`

	redeemPromotionSQL = `UPDATE promotions SET uses = uses + 1
		WHERE UPPER(code) = UPPER($1) AND uses < max_uses`

	promotionExistsSQL = `SELECT EXISTS (SELECT 1 FROM promotions WHERE UPPER(code) = UPPER($1))`

	upsertPromotionSQL = `INSERT INTO promotions (code, name, description, discount_percentage, discount_amount,
			minimum_order_amount, valid_from, valid_until, max_uses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ((UPPER(code))) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			discount_percentage = EXCLUDED.discount_percentage,
			discount_amount = EXCLUDED.discount_amount,
			minimum_order_amount = EXCLUDED.minimum_order_amount,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			max_uses = GREATEST(EXCLUDED.max_uses, promotions.uses)`
)

const (
	minFilterCapacity = 1024
	filterFPR         = 0.001
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
// Lookups consult an in-memory bloom filter of known codes first, so
// mistyped or guessed codes do not reach the database.
type PromotionRepository struct {
	pool *pgxpool.Pool

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewPromotionRepository returns a PromotionRepository that uses the given
// pool. The code filter is disabled until LoadFilter succeeds.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// LoadFilter rebuilds the code filter from the promotions table and returns
// the number of codes loaded.
func (r *PromotionRepository) LoadFilter(ctx context.Context) (int, error) {
	rows, err := r.pool.Query(ctx, listPromotionCodesSQL)
	if err != nil {
		return 0, fmt.Errorf("listing promotion codes: %w", err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("listing promotion codes: %w", err)
	}

	filter := bloom.NewWithEstimates(uint(max(len(codes)*2, minFilterCapacity)), filterFPR)
	for _, code := range codes {
		filter.AddString(code)
	}

	r.mu.Lock()
	r.filter = filter
	r.mu.Unlock()
	return len(codes), nil
}

// mayExist reports whether code can be present. Without a filter every code
// may exist.
func (r *PromotionRepository) mayExist(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter == nil || r.filter.TestString(code)
}

func (r *PromotionRepository) remember(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filter != nil {
		r.filter.AddString(code)
	}
}

// FindByCode looks up a promotion by code, case-insensitively. Returns
// promotion.ErrNotFound when no promotion matches.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	code = promotion.NormalizeCode(code)
	if !r.mayExist(code) {
		return nil, promotion.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, getPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &p, nil
}

// Redeem increments the usage counter only while it is below the cap. The
// check and increment are a single conditional UPDATE.
func (r *PromotionRepository) Redeem(ctx context.Context, code string) error {
	code = promotion.NormalizeCode(code)

	tag, err := r.pool.Exec(ctx, redeemPromotionSQL, code)
	if err != nil {
		return fmt.Errorf("redeeming promotion %q: %w", code, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, promotionExistsSQL, code).Scan(&exists); err != nil {
		return fmt.Errorf("redeeming promotion %q: %w", code, err)
	}
	if !exists {
		return promotion.ErrNotFound
	}
	return promotion.ErrUsageLimitReached
}

// List returns all promotions ordered by code.
func (r *PromotionRepository) List(ctx context.Context) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listPromotionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	promos, err := pgx.CollectRows(rows, scanPromotion)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return promos, nil
}

// Upsert inserts a promotion or updates its terms. Existing redemption counts
// are kept.
func (r *PromotionRepository) Upsert(ctx context.Context, p *promotion.Promotion) error {
	code := promotion.NormalizeCode(p.Code)
	pct, amount := p.Discount.Fields()

	_, err := r.pool.Exec(ctx, upsertPromotionSQL,
		code, p.Name, p.Description, pct, amount,
		p.MinimumOrderAmount, p.ValidFrom, p.ValidUntil, p.MaxUses,
	)
	if err != nil {
		return fmt.Errorf("upserting promotion %q: %w", code, err)
	}
	r.remember(code)
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		p          promotion.Promotion
		percentage decimal.Decimal
		amount     decimal.Decimal
		validFrom  time.Time
		validUntil time.Time
		maxUses    int32
		uses       int32
	)
	if err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &percentage, &amount,
		&p.MinimumOrderAmount, &validFrom, &validUntil, &maxUses, &uses,
	); err != nil {
		return p, err
	}

	discount, err := promotion.DiscountFromFields(percentage, amount)
	if err != nil {
		return p, fmt.Errorf("promotion %q: %w", p.Code, err)
	}
	p.Discount = discount
	p.ValidFrom = validFrom
	p.ValidUntil = validUntil
	p.MaxUses = int(maxUses)
	p.Uses = int(uses)
	return p, nil
}
