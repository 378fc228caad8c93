package distributors

import (
	"time"
)

// Distributor represents a distributor entity attached to a warehouse
type Distributor struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Email       string    `json:"email"`
	WarehouseID int64     `json:"warehouse_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateDistributorRequest represents request to create a distributor
type CreateDistributorRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	City        string `json:"city" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email"`
	WarehouseID int64  `json:"warehouse_id" validate:"required,gt=0"`
}
