package orders

import (
	"time"
)

// ============================================================================
// ORDER STATUS
// ============================================================================

// Status represents the lifecycle of a distributor order
type Status string

const (
	StatusPending   Status = "Pending"   // Placed, not yet dispatched
	StatusShipped   Status = "Shipped"   // Dispatched, warehouse stock deducted
	StatusDelivered Status = "Delivered" // Received, distributor stock credited
)

// transitions is the single source of truth for allowed status moves.
var transitions = map[Status][]Status{
	StatusPending:   {StatusShipped},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
}

// IsValid checks if the status is a known lifecycle state
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo checks whether moving to next is an allowed transition
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ============================================================================
// ORDER ENTITY
// ============================================================================

// Order represents a distributor order against a warehouse. Orders are never
// deleted; they only move forward through the status lifecycle.
type Order struct {
	ID            int64     `json:"id"`
	DistributorID int64     `json:"distributor_id"`
	WarehouseID   int64     `json:"warehouse_id"`
	ProductID     int64     `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryEntry is an append-only snapshot taken at each status change.
// Distributor and product names are denormalized on purpose: the row must
// read the same even if master data is renamed later.
type HistoryEntry struct {
	ID              int64     `json:"id"`
	OrderID         int64     `json:"order_id"`
	WarehouseID     int64     `json:"warehouse_id"`
	DistributorName string    `json:"distributor_name"`
	ProductName     string    `json:"product_name"`
	Quantity        int64     `json:"quantity"`
	Status          Status    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
}

// OrderWithDetails includes joined names for display
type OrderWithDetails struct {
	Order
	DistributorName string `json:"distributor_name"`
	WarehouseName   string `json:"warehouse_name"`
	ProductName     string `json:"product_name"`
}

// StatusSummary holds per-status order counts for one warehouse
type StatusSummary struct {
	Pending   int64 `json:"pending"`
	Shipped   int64 `json:"shipped"`
	Delivered int64 `json:"delivered"`
}

// ============================================================================
// REQUEST DTOs
// ============================================================================

// PlaceOrderRequest represents request to place a distributor order
type PlaceOrderRequest struct {
	DistributorID int64 `json:"distributor_id" validate:"required,gt=0"`
	WarehouseID   int64 `json:"warehouse_id" validate:"required,gt=0"`
	ProductID     int64 `json:"product_id" validate:"required,gt=0"`
	Quantity      int64 `json:"quantity" validate:"required,gt=0"`
}

// SetStatusRequest represents an admin status override request
type SetStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// ListFilters narrows warehouse order listings
type ListFilters struct {
	Status *Status
	Limit  int
	Offset int
}
