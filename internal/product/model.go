package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Category    *string         `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Input is the admin-editable part of a product.
type Input struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    *string         `json:"category,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
}

type ListOptions struct {
	OnlyActive bool
	Category   *string
	// NewestFirst orders by created_at instead of name.
	NewestFirst bool
	Limit       int
}
