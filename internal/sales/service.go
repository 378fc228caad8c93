package sales

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/milletflow/milletflow/internal/activity"
	"github.com/milletflow/milletflow/internal/masterdata/distributors"
	"github.com/milletflow/milletflow/internal/masterdata/products"
	"github.com/milletflow/milletflow/internal/masterdata/warehouses"
	"github.com/milletflow/milletflow/internal/shared"
)

// Store abstracts sales persistence.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByDistributor(ctx context.Context, distributorID int64) ([]SaleWithDetails, error)
	Summary(ctx context.Context) ([]SummaryRow, error)
	RecentPurchases(ctx context.Context, warehouseID int64) ([]Purchase, error)
}

// ProductResolver resolves catalog products by ID.
type ProductResolver interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// DistributorResolver resolves distributors by ID.
type DistributorResolver interface {
	Get(ctx context.Context, id int64) (distributors.Distributor, error)
}

// WarehouseResolver resolves warehouses by ID.
type WarehouseResolver interface {
	Get(ctx context.Context, id int64) (warehouses.Warehouse, error)
}

// ActivityRecorder appends activity entries.
type ActivityRecorder interface {
	Record(ctx context.Context, source, description string) error
}

// Service records sales and purchases. Both commands pair the record insert
// with a guarded stock decrement in one transaction, so a record can never
// exist without the stock having actually moved.
type Service struct {
	store        Store
	catalog      ProductResolver
	distributors DistributorResolver
	warehouses   WarehouseResolver
	activity     ActivityRecorder
	logger       *slog.Logger
}

func NewService(store Store, catalog ProductResolver, dist DistributorResolver, whs WarehouseResolver, recorder ActivityRecorder, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		catalog:      catalog,
		distributors: dist,
		warehouses:   whs,
		activity:     recorder,
		logger:       logger,
	}
}

// RecordSale debits distributor stock and inserts the sale atomically.
// The debit is conditional on sufficient quantity; the check and decrement
// are one statement.
func (s *Service) RecordSale(ctx context.Context, req RecordSaleRequest) (int64, error) {
	if req.Quantity <= 0 {
		return 0, shared.Invalid("quantity must be positive")
	}

	distributor, err := s.distributors.Get(ctx, req.DistributorID)
	if err != nil {
		return 0, fmt.Errorf("resolve distributor: %w", err)
	}
	product, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		return 0, fmt.Errorf("resolve product: %w", err)
	}

	var saleID int64
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DebitDistributorStock(ctx, req.DistributorID, req.ProductID, req.Quantity); err != nil {
			return fmt.Errorf("debit distributor stock: %w", err)
		}
		id, err := tx.InsertSale(ctx, Sale{
			DistributorID: req.DistributorID,
			ProductID:     req.ProductID,
			Quantity:      req.Quantity,
		})
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		saleID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	_ = s.activity.Record(ctx, activity.Source(distributor.Name, "Distributor"),
		fmt.Sprintf("Sold %d x %s", req.Quantity, product.Name))

	return saleID, nil
}

// RecordPurchase deducts warehouse stock and snapshots the purchase
// atomically. Unlike dispatch, the deduction rejects when stock is short.
func (s *Service) RecordPurchase(ctx context.Context, req RecordPurchaseRequest) (int64, error) {
	if req.Quantity <= 0 {
		return 0, shared.Invalid("quantity must be positive")
	}

	warehouse, err := s.warehouses.Get(ctx, req.WarehouseID)
	if err != nil {
		return 0, fmt.Errorf("resolve warehouse: %w", err)
	}
	product, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		return 0, fmt.Errorf("resolve product: %w", err)
	}

	var purchaseID int64
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeductWarehouseStockGuarded(ctx, req.WarehouseID, req.ProductID, req.Quantity); err != nil {
			return fmt.Errorf("deduct warehouse stock: %w", err)
		}
		id, err := tx.InsertPurchase(ctx, req.WarehouseID, req.CustomerName, req.ProductID, req.Quantity)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		purchaseID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	_ = s.activity.Record(ctx, activity.Source(warehouse.Name, req.CustomerName),
		fmt.Sprintf("Purchased %d x %s", req.Quantity, product.Name))

	return purchaseID, nil
}

// DistributorSales lists one distributor's sales, newest first.
func (s *Service) DistributorSales(ctx context.Context, distributorID int64) ([]SaleWithDetails, error) {
	if distributorID <= 0 {
		return nil, shared.Invalid("invalid distributor ID")
	}
	return s.store.ListByDistributor(ctx, distributorID)
}

// Summary aggregates sold quantity per distributor and product.
func (s *Service) Summary(ctx context.Context) ([]SummaryRow, error) {
	return s.store.Summary(ctx)
}

// RecentPurchases lists the newest purchases for one warehouse.
func (s *Service) RecentPurchases(ctx context.Context, warehouseID int64) ([]Purchase, error) {
	if warehouseID <= 0 {
		return nil, shared.Invalid("invalid warehouse ID")
	}
	return s.store.RecentPurchases(ctx, warehouseID)
}
