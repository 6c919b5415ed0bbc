package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"luvsick-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductSizeNotFound = errors.New("product size not found")
)

// ProductSizeRepository manages per-size stock counters. FindByIDForUpdate
// and DecrementStock are the reservation primitives: the first takes a row
// lock so concurrent orders racing for the same size serialize, the second
// re-checks the stock level inside the UPDATE so the counter can never go
// negative even if the caller's check was stale.
type ProductSizeRepository interface {
	Create(ctx context.Context, size *domain.ProductSize) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductSize, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProductSize, error)
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.ProductSize, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type productSizeRepository struct {
	db DBTX
}

// NewProductSizeRepository creates a new instance of ProductSizeRepository
func NewProductSizeRepository(db DBTX) ProductSizeRepository {
	return &productSizeRepository{db: db}
}

// Create inserts a new product size into the database
func (r *productSizeRepository) Create(ctx context.Context, size *domain.ProductSize) error {
	query := `
		INSERT INTO product_sizes (id, product_id, size, quantity)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, size.ID, size.ProductID, size.Size, size.Quantity)
	if err != nil {
		return fmt.Errorf("failed to create product size: %w", err)
	}

	return nil
}

// FindByID retrieves a product size by ID
func (r *productSizeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductSize, error) {
	return r.findByID(ctx, id, false)
}

// FindByIDForUpdate retrieves a product size by ID and locks the row for
// the duration of the enclosing transaction.
func (r *productSizeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProductSize, error) {
	return r.findByID(ctx, id, true)
}

func (r *productSizeRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.ProductSize, error) {
	query := `
		SELECT id, product_id, size, quantity
		FROM product_sizes
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	size := &domain.ProductSize{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&size.ID,
		&size.ProductID,
		&size.Size,
		&size.Quantity,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductSizeNotFound
		}
		return nil, fmt.Errorf("failed to find product size by ID: %w", err)
	}

	return size, nil
}

// FindByProductID retrieves all sizes of a product
func (r *productSizeRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.ProductSize, error) {
	query := `
		SELECT id, product_id, size, quantity
		FROM product_sizes
		WHERE product_id = $1
		ORDER BY size
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product sizes: %w", err)
	}
	defer rows.Close()

	sizes := []*domain.ProductSize{}
	for rows.Next() {
		size := &domain.ProductSize{}
		if err := rows.Scan(&size.ID, &size.ProductID, &size.Size, &size.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product size: %w", err)
		}
		sizes = append(sizes, size)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sizes: %w", err)
	}

	return sizes, nil
}

// DecrementStock subtracts quantity from the size's stock counter. The
// quantity guard in the WHERE clause makes the check-then-decrement atomic:
// zero affected rows means the stock no longer covers the request.
func (r *productSizeRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE product_sizes
		SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductSizeNotFound
	}

	return nil
}
