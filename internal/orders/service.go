package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/milletflow/milletflow/internal/activity"
	"github.com/milletflow/milletflow/internal/shared"
)

const recentFeedLimit = 50

// Store abstracts order persistence for the engine.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrderDetails(ctx context.Context, id int64) (OrderWithDetails, error)
	ListByWarehouse(ctx context.Context, warehouseID int64, filters ListFilters) ([]OrderWithDetails, error)
	ListByDistributor(ctx context.Context, distributorID int64) ([]OrderWithDetails, error)
	Recent(ctx context.Context, limit int) ([]OrderWithDetails, error)
	StatusSummary(ctx context.Context, warehouseID int64) (StatusSummary, error)
	History(ctx context.Context, orderID int64) ([]HistoryEntry, error)
}

// ActivityRecorder appends activity entries.
type ActivityRecorder interface {
	Record(ctx context.Context, source, description string) error
}

// Service runs the order lifecycle. Every command is one repeatable-read
// transaction; stock movements commit together with the status change that
// caused them, or not at all.
type Service struct {
	store    Store
	activity ActivityRecorder
	logger   *slog.Logger
}

func NewService(store Store, recorder ActivityRecorder, logger *slog.Logger) *Service {
	return &Service{store: store, activity: recorder, logger: logger}
}

// ============================================================================
// COMMANDS
// ============================================================================

// PlaceOrder creates a Pending order. Stock is not checked at placement;
// availability is settled at dispatch time.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (int64, error) {
	if req.Quantity <= 0 {
		return 0, shared.Invalid("quantity must be positive")
	}

	var orderID int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertOrder(ctx, Order{
			DistributorID: req.DistributorID,
			WarehouseID:   req.WarehouseID,
			ProductID:     req.ProductID,
			Quantity:      req.Quantity,
			Status:        StatusPending,
		})
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID = id
		return tx.AppendHistory(ctx, id, StatusPending)
	})
	if err != nil {
		return 0, err
	}

	s.recordActivity(ctx, orderID, func(d OrderWithDetails) (string, string) {
		return activity.Source(d.WarehouseName, d.DistributorName),
			fmt.Sprintf("Ordered %d x %s", d.Quantity, d.ProductName)
	})
	return orderID, nil
}

// Dispatch moves a Pending order to Shipped and deducts warehouse stock,
// flooring at zero.
func (s *Service) Dispatch(ctx context.Context, orderID int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		return s.shipTx(ctx, tx, order)
	})
	if err != nil {
		return err
	}

	s.recordActivity(ctx, orderID, func(d OrderWithDetails) (string, string) {
		return activity.Source(d.WarehouseName, "Admin"),
			fmt.Sprintf("Dispatched order #%d: %d x %s", d.ID, d.Quantity, d.ProductName)
	})
	return nil
}

// ConfirmDelivery moves a Shipped order to Delivered and credits distributor
// stock. The status change is a conditional update, so concurrent
// confirmations of the same order credit stock exactly once.
func (s *Service) ConfirmDelivery(ctx context.Context, orderID int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		return s.deliverTx(ctx, tx, order)
	})
	if err != nil {
		return err
	}

	s.recordActivity(ctx, orderID, func(d OrderWithDetails) (string, string) {
		return activity.Source(d.WarehouseName, d.DistributorName),
			fmt.Sprintf("Confirmed delivery of order #%d", d.ID)
	})
	return nil
}

// SetOrderStatus is the admin override. It funnels through the same guarded
// transition paths as Dispatch and ConfirmDelivery, so an override can never
// skip a stock movement or apply one twice.
func (s *Service) SetOrderStatus(ctx context.Context, orderID int64, to Status) error {
	if !to.IsValid() {
		return shared.Invalid("unknown order status")
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(to) {
			return fmt.Errorf("order #%d: %s to %s: %w", orderID, order.Status, to, shared.ErrInvalidTransition)
		}
		switch to {
		case StatusShipped:
			return s.shipTx(ctx, tx, order)
		case StatusDelivered:
			return s.deliverTx(ctx, tx, order)
		default:
			return fmt.Errorf("order #%d: %s to %s: %w", orderID, order.Status, to, shared.ErrInvalidTransition)
		}
	})
	if err != nil {
		return err
	}

	s.recordActivity(ctx, orderID, func(d OrderWithDetails) (string, string) {
		return activity.Source(d.WarehouseName, "Admin"),
			fmt.Sprintf("Order #%d status set to %s", d.ID, to)
	})
	return nil
}

func (s *Service) shipTx(ctx context.Context, tx TxRepository, order Order) error {
	if !order.Status.CanTransitionTo(StatusShipped) {
		return fmt.Errorf("order #%d: %s to %s: %w", order.ID, order.Status, StatusShipped, shared.ErrInvalidTransition)
	}
	moved, err := tx.TransitionStatus(ctx, order.ID, order.Status, StatusShipped)
	if err != nil {
		return fmt.Errorf("transition to shipped: %w", err)
	}
	if !moved {
		return fmt.Errorf("order #%d no longer %s: %w", order.ID, order.Status, shared.ErrPreconditionFailed)
	}
	if err := tx.DeductWarehouseStock(ctx, order.WarehouseID, order.ProductID, order.Quantity); err != nil {
		return fmt.Errorf("deduct warehouse stock: %w", err)
	}
	return tx.AppendHistory(ctx, order.ID, StatusShipped)
}

func (s *Service) deliverTx(ctx context.Context, tx TxRepository, order Order) error {
	moved, err := tx.TransitionStatus(ctx, order.ID, StatusShipped, StatusDelivered)
	if err != nil {
		return fmt.Errorf("transition to delivered: %w", err)
	}
	if !moved {
		return fmt.Errorf("order #%d is not shipped: %w", order.ID, shared.ErrPreconditionFailed)
	}
	if err := tx.CreditDistributorStock(ctx, order.DistributorID, order.ProductID, order.Quantity); err != nil {
		return fmt.Errorf("credit distributor stock: %w", err)
	}
	return tx.AppendHistory(ctx, order.ID, StatusDelivered)
}

// recordActivity appends a best-effort entry after the command committed.
// Failures never surface to the caller.
func (s *Service) recordActivity(ctx context.Context, orderID int64, build func(OrderWithDetails) (string, string)) {
	details, err := s.store.GetOrderDetails(ctx, orderID)
	if err != nil {
		s.logger.Warn("activity lookup failed", "order_id", orderID, "error", err)
		return
	}
	source, description := build(details)
	_ = s.activity.Record(ctx, source, description)
}

// ============================================================================
// QUERIES
// ============================================================================

// Get retrieves one order with joined names.
func (s *Service) Get(ctx context.Context, id int64) (OrderWithDetails, error) {
	if id <= 0 {
		return OrderWithDetails{}, shared.Invalid("invalid order ID")
	}
	return s.store.GetOrderDetails(ctx, id)
}

// WarehouseOrders lists warehouse orders plus per-status counts.
func (s *Service) WarehouseOrders(ctx context.Context, warehouseID int64, filters ListFilters) ([]OrderWithDetails, StatusSummary, error) {
	if warehouseID <= 0 {
		return nil, StatusSummary{}, shared.Invalid("invalid warehouse ID")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, StatusSummary{}, shared.Invalid("unknown order status")
	}
	list, err := s.store.ListByWarehouse(ctx, warehouseID, filters)
	if err != nil {
		return nil, StatusSummary{}, err
	}
	summary, err := s.store.StatusSummary(ctx, warehouseID)
	if err != nil {
		return nil, StatusSummary{}, err
	}
	return list, summary, nil
}

// DistributorOrders lists one distributor's order history.
func (s *Service) DistributorOrders(ctx context.Context, distributorID int64) ([]OrderWithDetails, error) {
	if distributorID <= 0 {
		return nil, shared.Invalid("invalid distributor ID")
	}
	return s.store.ListByDistributor(ctx, distributorID)
}

// RecentOrders lists the newest orders across all warehouses.
func (s *Service) RecentOrders(ctx context.Context) ([]OrderWithDetails, error) {
	return s.store.Recent(ctx, recentFeedLimit)
}

// History lists the append-only status snapshots for one order.
func (s *Service) History(ctx context.Context, orderID int64) ([]HistoryEntry, error) {
	if orderID <= 0 {
		return nil, shared.Invalid("invalid order ID")
	}
	return s.store.History(ctx, orderID)
}
