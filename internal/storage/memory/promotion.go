package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/food-delivery/internal/domain/promotion"
)

var _ promotion.Repository = (*PromotionStore)(nil)

// PromotionStore keeps promotions in memory keyed by normalized code.
type PromotionStore struct {
	mu     sync.Mutex
	lastID int64
	byCode map[string]*promotion.Promotion
}

// NewPromotionStore returns an empty PromotionStore.
func NewPromotionStore() *PromotionStore {
	return &PromotionStore{byCode: make(map[string]*promotion.Promotion)}
}

// Add stores a copy of p, assigning an ID when p has none.
func (s *PromotionStore) Add(p *promotion.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := promotion.NormalizeCode(p.Code)
	if _, ok := s.byCode[code]; ok {
		return errors.Wrap(promotion.ErrDuplicateCode, code)
	}
	cp := *p
	cp.Code = code
	if cp.ID == 0 {
		cp.ID = s.lastID + 1
	}
	s.lastID = max(s.lastID, cp.ID)
	s.byCode[code] = &cp
	return nil
}

// FindByCode implements promotion.Repository.
func (s *PromotionStore) FindByCode(_ context.Context, code string) (*promotion.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byCode[promotion.NormalizeCode(code)]
	if !ok {
		return nil, promotion.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Redeem implements promotion.Repository as a compare-and-increment under the
// store mutex.
func (s *PromotionStore) Redeem(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byCode[promotion.NormalizeCode(code)]
	if !ok {
		return promotion.ErrNotFound
	}
	if p.Uses >= p.MaxUses {
		return promotion.ErrUsageLimitReached
	}
	p.Uses++
	return nil
}

// List implements promotion.Repository. Promotions are ordered by code.
func (s *PromotionStore) List(_ context.Context) ([]promotion.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]promotion.Promotion, 0, len(s.byCode))
	for _, p := range s.byCode {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b promotion.Promotion) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out, nil
}
