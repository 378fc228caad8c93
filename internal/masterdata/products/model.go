package products

import (
	"time"
)

// Product represents a catalog product entity
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	EAN       string    `json:"ean"`
	Unit      string    `json:"unit"`
	MRP       float64   `json:"mrp"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductRequest represents request to create a product
type CreateProductRequest struct {
	Name string  `json:"name" validate:"required,max=200"`
	SKU  string  `json:"sku" validate:"required,max=64"`
	EAN  string  `json:"ean" validate:"omitempty,max=64"`
	Unit string  `json:"unit" validate:"required,max=32"`
	MRP  float64 `json:"mrp" validate:"gte=0"`
}
