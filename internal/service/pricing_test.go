package service

import (
	"testing"

	"luvsick-store/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestLineCharge_Example(t *testing.T) {
	product := &domain.Product{
		Price:    decimal.RequireFromString("100.00"),
		Discount: 10,
	}

	charge := LineCharge(product, 3)

	expected := decimal.RequireFromString("270.00")
	if !charge.Equal(expected) {
		t.Errorf("expected charge %s, got %s", expected, charge)
	}
}

func TestLineCharge_NoDiscount(t *testing.T) {
	product := &domain.Product{
		Price:    decimal.RequireFromString("19.99"),
		Discount: 0,
	}

	charge := LineCharge(product, 2)

	expected := decimal.RequireFromString("39.98")
	if !charge.Equal(expected) {
		t.Errorf("expected charge %s, got %s", expected, charge)
	}
}

func TestLineCharge_FullDiscount(t *testing.T) {
	product := &domain.Product{
		Price:    decimal.RequireFromString("49.50"),
		Discount: 100,
	}

	charge := LineCharge(product, 5)

	if !charge.IsZero() {
		t.Errorf("expected zero charge at 100%% discount, got %s", charge)
	}
}

func TestProperty_LineChargeIsExact(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("100 × charge equals price × (100 − discount) × quantity", prop.ForAll(
		func(priceCents int64, discount int, quantity int) bool {
			price := decimal.NewFromInt(priceCents).Div(decimal.NewFromInt(100))
			product := &domain.Product{Price: price, Discount: discount}

			charge := LineCharge(product, quantity)

			// The division by 100 must be exact for currency-precision
			// prices, so scaling back up must reproduce the undivided
			// product exactly, with no floating-point drift.
			left := charge.Mul(decimal.NewFromInt(100))
			right := price.
				Mul(decimal.NewFromInt(int64(100 - discount))).
				Mul(decimal.NewFromInt(int64(quantity)))

			return left.Equal(right)
		},
		gen.Int64Range(1, 1_000_000),
		gen.IntRange(0, 100),
		gen.IntRange(1, 50),
	))

	properties.Property("charge scales linearly with quantity", prop.ForAll(
		func(priceCents int64, discount int, quantity int) bool {
			price := decimal.NewFromInt(priceCents).Div(decimal.NewFromInt(100))
			product := &domain.Product{Price: price, Discount: discount}

			single := LineCharge(product, 1)
			many := LineCharge(product, quantity)

			return many.Equal(single.Mul(decimal.NewFromInt(int64(quantity))))
		},
		gen.Int64Range(1, 1_000_000),
		gen.IntRange(0, 100),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
