package cities

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]City, int, error) {
	if filters.Page < 1 {
		filters.Page = shared.DefaultPage
	}
	if filters.Limit < 1 {
		filters.Limit = shared.DefaultLimit
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (City, error) {
	return s.repo.Get(ctx, id)
}

// GetActiveByName resolves an active city by exact, case-sensitive name, the
// same lookup lead rows resolve against.
func (s *Service) GetActiveByName(ctx context.Context, name string) (City, error) {
	return s.repo.GetActiveByName(ctx, name)
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
