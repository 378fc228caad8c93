package ledger

import (
	"context"
	"fmt"

	"github.com/milletflow/milletflow/internal/activity"
	"github.com/milletflow/milletflow/internal/masterdata/products"
	"github.com/milletflow/milletflow/internal/masterdata/warehouses"
	"github.com/milletflow/milletflow/internal/shared"
)

// ProductResolver resolves catalog products by SKU.
type ProductResolver interface {
	GetBySKU(ctx context.Context, sku string) (products.Product, error)
}

// WarehouseResolver resolves warehouses by ID.
type WarehouseResolver interface {
	Get(ctx context.Context, id int64) (warehouses.Warehouse, error)
}

// ActivityRecorder appends activity entries.
type ActivityRecorder interface {
	Record(ctx context.Context, source, description string) error
}

// Service provides stock intake and pool projections.
type Service struct {
	repo       *Repository
	catalog    ProductResolver
	warehouses WarehouseResolver
	activity   ActivityRecorder
}

func NewService(repo *Repository, catalog ProductResolver, whs WarehouseResolver, recorder ActivityRecorder) *Service {
	return &Service{repo: repo, catalog: catalog, warehouses: whs, activity: recorder}
}

// AddStock resolves the SKU and increments warehouse inventory.
func (s *Service) AddStock(ctx context.Context, req AddStockRequest) error {
	if req.Quantity <= 0 {
		return shared.Invalid("quantity must be positive")
	}

	warehouse, err := s.warehouses.Get(ctx, req.WarehouseID)
	if err != nil {
		return fmt.Errorf("resolve warehouse: %w", err)
	}

	product, err := s.catalog.GetBySKU(ctx, req.SKU)
	if err != nil {
		return fmt.Errorf("resolve sku: %w", err)
	}

	if err := s.repo.AddWarehouseStock(ctx, warehouse.ID, product.ID, req.Quantity); err != nil {
		return shared.StorageFailure("add warehouse stock", err)
	}

	_ = s.activity.Record(ctx, activity.Source(warehouse.Name, "Admin"),
		fmt.Sprintf("Added %d stock for %s", req.Quantity, product.Name))

	return nil
}

// WarehouseInventory returns the full catalog-joined warehouse pool.
func (s *Service) WarehouseInventory(ctx context.Context, warehouseID int64) ([]InventoryRow, error) {
	if warehouseID <= 0 {
		return nil, shared.Invalid("invalid warehouse ID")
	}
	return s.repo.WarehouseInventory(ctx, warehouseID)
}

// DistributorStock returns the full catalog-joined distributor pool.
func (s *Service) DistributorStock(ctx context.Context, distributorID int64) ([]InventoryRow, error) {
	if distributorID <= 0 {
		return nil, shared.Invalid("invalid distributor ID")
	}
	return s.repo.DistributorStock(ctx, distributorID)
}

// LowWarehouseStock returns warehouse entries at or below threshold.
func (s *Service) LowWarehouseStock(ctx context.Context, threshold int64) ([]LowStockRow, error) {
	if threshold < 0 {
		return nil, shared.Invalid("threshold must not be negative")
	}
	return s.repo.LowWarehouseStock(ctx, threshold)
}
