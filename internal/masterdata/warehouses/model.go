package warehouses

import (
	"time"
)

// Warehouse represents a warehouse entity
type Warehouse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWarehouseRequest represents request to create a warehouse
type CreateWarehouseRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
}
