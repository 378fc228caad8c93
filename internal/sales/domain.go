package sales

import (
	"time"
)

// Sale records a distributor selling delivered stock onward.
type Sale struct {
	ID            int64     `json:"id"`
	DistributorID int64     `json:"distributor_id"`
	ProductID     int64     `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	Date          time.Time `json:"date"`
}

// SaleWithDetails includes the joined product name
type SaleWithDetails struct {
	Sale
	ProductName string `json:"product_name"`
}

// Purchase is an append-only snapshot of a walk-in customer buying directly
// from a warehouse. Names are denormalized at write time.
type Purchase struct {
	ID            int64     `json:"id"`
	WarehouseID   int64     `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	CustomerName  string    `json:"customer_name"`
	ProductName   string    `json:"product_name"`
	Quantity      int64     `json:"quantity"`
	Date          time.Time `json:"date"`
}

// SummaryRow aggregates sold quantity per distributor and product
type SummaryRow struct {
	DistributorID   int64  `json:"distributor_id"`
	DistributorName string `json:"distributor_name"`
	ProductName     string `json:"product_name"`
	TotalQuantity   int64  `json:"total_quantity"`
}

// RecordSaleRequest represents request to record a distributor sale
type RecordSaleRequest struct {
	DistributorID int64 `json:"distributor_id" validate:"required,gt=0"`
	ProductID     int64 `json:"product_id" validate:"required,gt=0"`
	Quantity      int64 `json:"quantity" validate:"required,gt=0"`
}

// RecordPurchaseRequest represents request to record a warehouse purchase
type RecordPurchaseRequest struct {
	WarehouseID  int64  `json:"warehouse_id" validate:"required,gt=0"`
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	ProductID    int64  `json:"product_id" validate:"required,gt=0"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
}
