package products

import (
	"context"

	"github.com/meridian-oms/meridian-oms/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	if filters.Page < 1 {
		filters.Page = shared.DefaultPage
	}
	if filters.Limit < 1 {
		filters.Limit = shared.DefaultLimit
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// GetActiveByCode resolves an active product by its catalog code, the same
// lookup lead rows resolve against.
func (s *Service) GetActiveByCode(ctx context.Context, code string) (Product, error) {
	return s.repo.GetActiveByCode(ctx, code)
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
