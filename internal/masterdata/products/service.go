package products

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

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.Invalid("invalid product ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (Product, error) {
	if sku == "" {
		return Product{}, shared.Invalid("sku is required")
	}
	return s.repo.GetBySKU(ctx, sku)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	return s.repo.Create(ctx, Product{
		Name: req.Name,
		SKU:  req.SKU,
		EAN:  req.EAN,
		Unit: req.Unit,
		MRP:  req.MRP,
	})
}
