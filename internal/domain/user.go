package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account for the admin surface (order management and
// catalog announcements). Customers placing orders are not users.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
