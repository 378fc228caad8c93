package ledger

import (
	"context"

	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/shared"
)

// Repository runs stock pool statements against any DBTX, so the same
// operations work on the pool directly or inside an engine transaction.
type Repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) *Repository {
	return &Repository{db: dbtx}
}

// AddWarehouseStock lazily creates the entry and increments quantity.
func (r *Repository) AddWarehouseStock(ctx context.Context, warehouseID, productID, qty int64) error {
	query := `
		INSERT INTO warehouse_inventory (warehouse_id, product_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET qty = warehouse_inventory.qty + EXCLUDED.qty
	`
	_, err := r.db.Exec(ctx, query, warehouseID, productID, qty)
	return err
}

// DeductWarehouseStock decrements quantity, flooring at zero. A missing entry
// is treated as zero stock and stays at zero.
func (r *Repository) DeductWarehouseStock(ctx context.Context, warehouseID, productID, qty int64) error {
	query := `
		INSERT INTO warehouse_inventory (warehouse_id, product_id, qty)
		VALUES ($1, $2, 0)
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET qty = GREATEST(warehouse_inventory.qty - $3, 0)
	`
	_, err := r.db.Exec(ctx, query, warehouseID, productID, qty)
	return err
}

// DeductWarehouseStockGuarded decrements only when enough stock exists.
// Check and decrement are one statement, so concurrent callers cannot both
// pass on the same units.
func (r *Repository) DeductWarehouseStockGuarded(ctx context.Context, warehouseID, productID, qty int64) error {
	query := `
		UPDATE warehouse_inventory
		SET qty = qty - $3
		WHERE warehouse_id = $1 AND product_id = $2 AND qty >= $3
	`
	tag, err := r.db.Exec(ctx, query, warehouseID, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// CreditDistributorStock lazily creates the entry and increments quantity.
func (r *Repository) CreditDistributorStock(ctx context.Context, distributorID, productID, qty int64) error {
	query := `
		INSERT INTO distributor_stock (distributor_id, product_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (distributor_id, product_id)
		DO UPDATE SET qty = distributor_stock.qty + EXCLUDED.qty
	`
	_, err := r.db.Exec(ctx, query, distributorID, productID, qty)
	return err
}

// DebitDistributorStock decrements only when enough stock exists.
func (r *Repository) DebitDistributorStock(ctx context.Context, distributorID, productID, qty int64) error {
	query := `
		UPDATE distributor_stock
		SET qty = qty - $3
		WHERE distributor_id = $1 AND product_id = $2 AND qty >= $3
	`
	tag, err := r.db.Exec(ctx, query, distributorID, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// WarehouseInventory lists every catalog product with the warehouse quantity,
// zero for products without a ledger entry yet.
func (r *Repository) WarehouseInventory(ctx context.Context, warehouseID int64) ([]InventoryRow, error) {
	query := `
		SELECT p.id, p.name, p.sku, p.unit, COALESCE(wi.qty, 0)
		FROM products p
		LEFT JOIN warehouse_inventory wi
			ON wi.product_id = p.id AND wi.warehouse_id = $1
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []InventoryRow
	for rows.Next() {
		var row InventoryRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.SKU, &row.Unit, &row.Qty); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// DistributorStock lists every catalog product with the distributor quantity.
func (r *Repository) DistributorStock(ctx context.Context, distributorID int64) ([]InventoryRow, error) {
	query := `
		SELECT p.id, p.name, p.sku, p.unit, COALESCE(ds.qty, 0)
		FROM products p
		LEFT JOIN distributor_stock ds
			ON ds.product_id = p.id AND ds.distributor_id = $1
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, distributorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []InventoryRow
	for rows.Next() {
		var row InventoryRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.SKU, &row.Unit, &row.Qty); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// LowWarehouseStock returns warehouse entries at or below threshold.
func (r *Repository) LowWarehouseStock(ctx context.Context, threshold int64) ([]LowStockRow, error) {
	query := `
		SELECT wi.warehouse_id, w.name, wi.product_id, p.name, wi.qty
		FROM warehouse_inventory wi
		INNER JOIN warehouses w ON w.id = wi.warehouse_id
		INNER JOIN products p ON p.id = wi.product_id
		WHERE wi.qty <= $1
		ORDER BY wi.qty, w.name, p.name
	`
	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LowStockRow
	for rows.Next() {
		var row LowStockRow
		if err := rows.Scan(&row.WarehouseID, &row.WarehouseName, &row.ProductID, &row.ProductName, &row.Qty); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
