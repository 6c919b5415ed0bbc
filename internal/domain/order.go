package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is a closed set of string tags. No transition matrix is
// enforced: any status may follow any other. Callers that need workflow
// guards have to add them on top.
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "RECEIVED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every recognized status.
var OrderStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the recognized statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is the ledger entry for one successful checkout. Items maps a
// ProductSize id to the purchased quantity and is the authoritative
// line-item record; Products is the distinct product set kept for display.
// Everything except Status is immutable after creation.
type Order struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	CustomerID uuid.UUID         `json:"customer_id" db:"customer_id"`
	Customer   *Customer         `json:"customer,omitempty"`
	Products   []*Product        `json:"products,omitempty"`
	Items      map[uuid.UUID]int `json:"items"`
	TotalPrice decimal.Decimal   `json:"total_price" db:"total_price"`
	Status     OrderStatus       `json:"status" db:"status"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}
