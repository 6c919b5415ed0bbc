package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a storefront buyer. Email is the natural key: the first order
// from a new email creates the row, later orders with the same email reuse
// it and their submitted profile fields are discarded.
type Customer struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Name           string    `json:"name" db:"name"`
	City           string    `json:"city" db:"city"`
	Street         string    `json:"street" db:"street"`
	BuildingNumber string    `json:"building_number" db:"building_number"`
	FlatNumber     string    `json:"flat_number" db:"flat_number"`
	PhoneNumber    string    `json:"phone_number" db:"phone_number"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
