package warehouses

import (
	"context"

	"github.com/milletflow/milletflow/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Warehouse, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Warehouse, error) {
	if id <= 0 {
		return Warehouse{}, shared.Invalid("invalid warehouse ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateWarehouseRequest) (Warehouse, error) {
	return s.repo.Create(ctx, Warehouse{
		Name:     req.Name,
		Location: req.Location,
		Email:    req.Email,
	})
}
