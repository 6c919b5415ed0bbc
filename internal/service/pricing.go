package service

import (
	"luvsick-store/internal/domain"

	"github.com/shopspring/decimal"
)

// LineCharge computes the charge for one line item:
//
//	price × (100 − discount) / 100 × quantity
//
// The multiply-before-divide order is load-bearing: historical totals were
// produced this way and migrated data must match them exactly. Arithmetic
// stays in decimal the whole way, never float.
func LineCharge(product *domain.Product, quantity int) decimal.Decimal {
	return product.Price.
		Mul(decimal.NewFromInt(int64(100 - product.Discount))).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(int64(quantity)))
}
