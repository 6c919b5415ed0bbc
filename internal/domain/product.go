package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Price and Cost are exact
// decimals; Discount is a whole percentage between 0 and 100.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	Discount    int             `json:"discount" db:"discount"`
	CategoryID  uuid.UUID       `json:"category_id" db:"category_id"`
	Sizes       []*ProductSize  `json:"sizes,omitempty"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ProductSize is one sellable size of a product with its own stock counter.
// Quantity never goes below zero; the only code path that decreases it is
// the order reservation step.
type ProductSize struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
