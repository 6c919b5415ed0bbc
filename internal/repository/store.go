package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by repositories. Both *sql.DB and
// *sql.Tx satisfy it, so the same repository code runs inside or outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles every repository over a single connection or transaction.
// WithinTx runs fn with a Store bound to one transaction; any error from fn
// rolls the whole transaction back, so a failed stock check undoes every
// decrement and customer insert made earlier in the same request.
type Store interface {
	Products() ProductRepository
	ProductSizes() ProductSizeRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Users() UserRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db   *sql.DB
	dbtx DBTX

	products     ProductRepository
	productSizes ProductSizeRepository
	customers    CustomerRepository
	orders       OrderRepository
	users        UserRepository
}

// NewStore creates a Store over the given database handle.
func NewStore(db *sql.DB) Store {
	return newSQLStore(db, db)
}

func newSQLStore(db *sql.DB, dbtx DBTX) *sqlStore {
	return &sqlStore{
		db:           db,
		dbtx:         dbtx,
		products:     NewProductRepository(dbtx),
		productSizes: NewProductSizeRepository(dbtx),
		customers:    NewCustomerRepository(dbtx),
		orders:       NewOrderRepository(dbtx),
		users:        NewUserRepository(dbtx),
	}
}

func (s *sqlStore) Products() ProductRepository         { return s.products }
func (s *sqlStore) ProductSizes() ProductSizeRepository { return s.productSizes }
func (s *sqlStore) Customers() CustomerRepository       { return s.customers }
func (s *sqlStore) Orders() OrderRepository             { return s.orders }
func (s *sqlStore) Users() UserRepository               { return s.users }

// WithinTx begins a transaction and runs fn with repositories bound to it.
// If the Store is already transactional, fn joins the open transaction.
func (s *sqlStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.dbtx.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newSQLStore(s.db, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
