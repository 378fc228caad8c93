package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/milletflow/milletflow/internal/ledger"
	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/shared"
)

const recentPurchaseLimit = 10

// Repository provides PostgreSQL backed persistence for sales operations.
type Repository struct {
	pool db.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the writes that must commit atomically: the record
// insert and the stock movement that backs it.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	// InsertPurchase snapshots warehouse and product names into the row.
	InsertPurchase(ctx context.Context, warehouseID int64, customerName string, productID, qty int64) (int64, error)

	DebitDistributorStock(ctx context.Context, distributorID, productID, qty int64) error
	DeductWarehouseStockGuarded(ctx context.Context, warehouseID, productID, qty int64) error
}

type txRepo struct {
	tx     pgx.Tx
	ledger *ledger.Repository
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, ledger: ledger.NewRepository(tx)})
	})
}

func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	query := `
		INSERT INTO sales (distributor_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, sale.DistributorID, sale.ProductID, sale.Quantity).Scan(&id)
	return id, err
}

func (t *txRepo) InsertPurchase(ctx context.Context, warehouseID int64, customerName string, productID, qty int64) (int64, error) {
	query := `
		INSERT INTO customer_purchases (warehouse_id, warehouse_name, customer_name, product_name, quantity)
		SELECT w.id, w.name, $2, p.name, $4
		FROM warehouses w, products p
		WHERE w.id = $1 AND p.id = $3
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, warehouseID, customerName, productID, qty).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepo) DebitDistributorStock(ctx context.Context, distributorID, productID, qty int64) error {
	return t.ledger.DebitDistributorStock(ctx, distributorID, productID, qty)
}

func (t *txRepo) DeductWarehouseStockGuarded(ctx context.Context, warehouseID, productID, qty int64) error {
	return t.ledger.DeductWarehouseStockGuarded(ctx, warehouseID, productID, qty)
}

// ============================================================================
// READ PROJECTIONS
// ============================================================================

// ListByDistributor retrieves one distributor's sales, newest first.
func (r *Repository) ListByDistributor(ctx context.Context, distributorID int64) ([]SaleWithDetails, error) {
	query := `
		SELECT s.id, s.distributor_id, s.product_id, s.quantity, s.date, p.name
		FROM sales s
		INNER JOIN products p ON p.id = s.product_id
		WHERE s.distributor_id = $1
		ORDER BY s.date DESC, s.id DESC
	`
	rows, err := r.pool.Query(ctx, query, distributorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []SaleWithDetails
	for rows.Next() {
		var s SaleWithDetails
		if err := rows.Scan(&s.ID, &s.DistributorID, &s.ProductID, &s.Quantity, &s.Date, &s.ProductName); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Summary aggregates sold quantity per distributor and product.
func (r *Repository) Summary(ctx context.Context) ([]SummaryRow, error) {
	query := `
		SELECT s.distributor_id, d.name, p.name, SUM(s.quantity)
		FROM sales s
		INNER JOIN distributors d ON d.id = s.distributor_id
		INNER JOIN products p ON p.id = s.product_id
		GROUP BY s.distributor_id, d.name, p.name
		ORDER BY d.name, p.name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.DistributorID, &row.DistributorName, &row.ProductName, &row.TotalQuantity); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// RecentPurchases retrieves the newest purchases for one warehouse.
func (r *Repository) RecentPurchases(ctx context.Context, warehouseID int64) ([]Purchase, error) {
	query := `
		SELECT id, warehouse_id, warehouse_name, customer_name, product_name, quantity, date
		FROM customer_purchases
		WHERE warehouse_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, warehouseID, recentPurchaseLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.WarehouseID, &p.WarehouseName, &p.CustomerName,
			&p.ProductName, &p.Quantity, &p.Date); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Count returns the total number of sales.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total)
	return total, err
}
