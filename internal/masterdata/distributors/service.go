package distributors

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

func (s *Service) List(ctx context.Context) ([]Distributor, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByWarehouse(ctx context.Context, warehouseID int64) ([]Distributor, error) {
	if warehouseID <= 0 {
		return nil, shared.Invalid("invalid warehouse ID")
	}
	return s.repo.ListByWarehouse(ctx, warehouseID)
}

func (s *Service) Get(ctx context.Context, id int64) (Distributor, error) {
	if id <= 0 {
		return Distributor{}, shared.Invalid("invalid distributor ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateDistributorRequest) (Distributor, error) {
	return s.repo.Create(ctx, Distributor{
		Name:        req.Name,
		City:        req.City,
		Email:       req.Email,
		WarehouseID: req.WarehouseID,
	})
}
