package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/milletflow/milletflow/internal/ledger"
	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for order operations.
type Repository struct {
	pool db.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside one engine
// transaction: order writes plus the stock pool movements that must commit
// with them.
type TxRepository interface {
	GetOrder(ctx context.Context, id int64) (Order, error)
	InsertOrder(ctx context.Context, order Order) (int64, error)
	// TransitionStatus compare-and-sets the status. It reports false when the
	// order is no longer in the from status, without error.
	TransitionStatus(ctx context.Context, id int64, from, to Status) (bool, error)
	AppendHistory(ctx context.Context, orderID int64, status Status) error

	DeductWarehouseStock(ctx context.Context, warehouseID, productID, qty int64) error
	CreditDistributorStock(ctx context.Context, distributorID, productID, qty int64) error
}

type txRepo struct {
	tx     pgx.Tx
	ledger *ledger.Repository
}

// WithTx wraps callback in a repeatable-read transaction. The wrapper carries
// the order writes plus the ledger movements that must commit with them.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, ledger: ledger.NewRepository(tx)})
	})
}

// ============================================================================
// TRANSACTIONAL OPERATIONS
// ============================================================================

func (t *txRepo) GetOrder(ctx context.Context, id int64) (Order, error) {
	query := `
		SELECT id, distributor_id, warehouse_id, product_id, quantity, status, created_at
		FROM orders
		WHERE id = $1
	`
	var o Order
	err := t.tx.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.DistributorID, &o.WarehouseID, &o.ProductID, &o.Quantity, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (t *txRepo) InsertOrder(ctx context.Context, order Order) (int64, error) {
	query := `
		INSERT INTO orders (distributor_id, warehouse_id, product_id, quantity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		order.DistributorID, order.WarehouseID, order.ProductID, order.Quantity, order.Status,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, fmt.Errorf("unknown order reference: %w", shared.ErrNotFound)
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepo) TransitionStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3
		WHERE id = $1 AND status = $2
	`
	tag, err := t.tx.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendHistory snapshots the order with its current names into the
// append-only history table.
func (t *txRepo) AppendHistory(ctx context.Context, orderID int64, status Status) error {
	query := `
		INSERT INTO order_status_history
			(order_id, warehouse_id, distributor_name, product_name, quantity, status)
		SELECT o.id, o.warehouse_id, d.name, p.name, o.quantity, $2
		FROM orders o
		INNER JOIN distributors d ON d.id = o.distributor_id
		INNER JOIN products p ON p.id = o.product_id
		WHERE o.id = $1
	`
	tag, err := t.tx.Exec(ctx, query, orderID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepo) DeductWarehouseStock(ctx context.Context, warehouseID, productID, qty int64) error {
	return t.ledger.DeductWarehouseStock(ctx, warehouseID, productID, qty)
}

func (t *txRepo) CreditDistributorStock(ctx context.Context, distributorID, productID, qty int64) error {
	return t.ledger.CreditDistributorStock(ctx, distributorID, productID, qty)
}

// ============================================================================
// READ PROJECTIONS
// ============================================================================

const orderDetailsSelect = `
	SELECT o.id, o.distributor_id, o.warehouse_id, o.product_id, o.quantity,
	       o.status, o.created_at,
	       d.name AS distributor_name,
	       w.name AS warehouse_name,
	       p.name AS product_name
	FROM orders o
	INNER JOIN distributors d ON d.id = o.distributor_id
	INNER JOIN warehouses w ON w.id = o.warehouse_id
	INNER JOIN products p ON p.id = o.product_id
`

// GetOrderDetails retrieves one order with joined names.
func (r *Repository) GetOrderDetails(ctx context.Context, id int64) (OrderWithDetails, error) {
	query := orderDetailsSelect + ` WHERE o.id = $1`
	var o OrderWithDetails
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.DistributorID, &o.WarehouseID, &o.ProductID, &o.Quantity,
		&o.Status, &o.CreatedAt, &o.DistributorName, &o.WarehouseName, &o.ProductName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderWithDetails{}, shared.ErrNotFound
		}
		return OrderWithDetails{}, err
	}
	return o, nil
}

// ListByWarehouse retrieves warehouse orders, optionally filtered by status.
func (r *Repository) ListByWarehouse(ctx context.Context, warehouseID int64, filters ListFilters) ([]OrderWithDetails, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	conditions = append(conditions, fmt.Sprintf("o.warehouse_id = $%d", argPos))
	args = append(args, warehouseID)
	argPos++

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	query := orderDetailsSelect + " WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY o.created_at DESC, o.id DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderDetails(rows)
}

// ListByDistributor retrieves one distributor's order history.
func (r *Repository) ListByDistributor(ctx context.Context, distributorID int64) ([]OrderWithDetails, error) {
	query := orderDetailsSelect + ` WHERE o.distributor_id = $1 ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.pool.Query(ctx, query, distributorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderDetails(rows)
}

// Recent retrieves the newest orders across all warehouses.
func (r *Repository) Recent(ctx context.Context, limit int) ([]OrderWithDetails, error) {
	query := orderDetailsSelect + ` ORDER BY o.created_at DESC, o.id DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderDetails(rows)
}

// StatusSummary counts warehouse orders per status.
func (r *Repository) StatusSummary(ctx context.Context, warehouseID int64) (StatusSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Shipped'),
			COUNT(*) FILTER (WHERE status = 'Delivered')
		FROM orders
		WHERE warehouse_id = $1
	`
	var s StatusSummary
	err := r.pool.QueryRow(ctx, query, warehouseID).Scan(&s.Pending, &s.Shipped, &s.Delivered)
	return s, err
}

// History retrieves the append-only status snapshots for one order.
func (r *Repository) History(ctx context.Context, orderID int64) ([]HistoryEntry, error) {
	query := `
		SELECT id, order_id, warehouse_id, distributor_name, product_name, quantity, status, timestamp
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY timestamp, id
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.WarehouseID, &e.DistributorName,
			&e.ProductName, &e.Quantity, &e.Status, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of orders.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total)
	return total, err
}

func scanOrderDetails(rows pgx.Rows) ([]OrderWithDetails, error) {
	var list []OrderWithDetails
	for rows.Next() {
		var o OrderWithDetails
		if err := rows.Scan(
			&o.ID, &o.DistributorID, &o.WarehouseID, &o.ProductID, &o.Quantity,
			&o.Status, &o.CreatedAt, &o.DistributorName, &o.WarehouseName, &o.ProductName,
		); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
