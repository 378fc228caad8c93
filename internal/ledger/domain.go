package ledger

// WarehouseInventoryEntry tracks on-hand quantity for one product in one
// warehouse. Rows are created lazily on first movement and qty never drops
// below zero.
type WarehouseInventoryEntry struct {
	WarehouseID int64 `json:"warehouse_id"`
	ProductID   int64 `json:"product_id"`
	Qty         int64 `json:"qty"`
}

// DistributorStockEntry tracks delivered quantity held by one distributor.
type DistributorStockEntry struct {
	DistributorID int64 `json:"distributor_id"`
	ProductID     int64 `json:"product_id"`
	Qty           int64 `json:"qty"`
}

// InventoryRow is the catalog-joined projection of a stock pool: every
// product appears, with zero qty when no ledger row exists yet.
type InventoryRow struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Unit        string `json:"unit"`
	Qty         int64  `json:"qty"`
}

// LowStockRow is one warehouse product at or below the reorder threshold.
type LowStockRow struct {
	WarehouseID   int64  `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	Qty           int64  `json:"qty"`
}

// AddStockRequest represents request to add warehouse stock by SKU
type AddStockRequest struct {
	WarehouseID int64  `json:"warehouse_id" validate:"required,gt=0"`
	SKU         string `json:"sku" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
}
