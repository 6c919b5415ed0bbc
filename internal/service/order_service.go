package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"luvsick-store/internal/domain"
	"luvsick-store/internal/notification"
	"luvsick-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// OrdersPageSize is the fixed page size of the order query.
	OrdersPageSize = 10

	// txRetryAttempts bounds automatic retries of the checkout transaction
	// after a serialization or deadlock failure. Business-rule failures are
	// never retried.
	txRetryAttempts = 2
	txRetryBackoff  = 25 * time.Millisecond
)

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
)

// InsufficientStockError reports a size whose stock does not cover the
// requested quantity. The whole order aborts; nothing is decremented.
type InsufficientStockError struct {
	SizeID    uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product size %s: requested %d, available %d",
		e.SizeID, e.Requested, e.Available)
}

// CreateOrderInput is the checkout request: the candidate customer profile,
// the product set for display, and the size→quantity line items.
type CreateOrderInput struct {
	Customer       domain.Customer
	ProductIDs     []uuid.UUID
	SizeQuantities map[uuid.UUID]int
}

// OrderService defines the order workflow: checkout, paginated queries and
// status transitions.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrders(ctx context.Context, status *domain.OrderStatus, pageNum int, sortDir, sortField string) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	AnnounceNewArrival(ctx context.Context, productID uuid.UUID) error
}

type orderService struct {
	store    repository.Store
	notifier notification.Notifier
	logger   *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(store repository.Store, notifier notification.Notifier, logger *zap.Logger) OrderService {
	return &orderService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateOrder runs the whole checkout in one transaction: resolve the
// customer by email, fetch the product set, reserve stock for every line
// item and persist the order with status RECEIVED. Any failure rolls the
// transaction back, so stock decrements and the customer insert never
// survive a failed order. Serialization conflicts are retried a bounded
// number of times; the confirmation email goes out only after commit.
func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.SizeQuantities) == 0 {
		return nil, ErrEmptyOrder
	}

	var order *domain.Order
	var customer *domain.Customer

	backoff := retry.WithMaxRetries(txRetryAttempts, retry.NewConstant(txRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			var txErr error
			customer, txErr = s.resolveCustomer(ctx, tx, input.Customer)
			if txErr != nil {
				return txErr
			}

			products, txErr := tx.Products().FindByIDs(ctx, input.ProductIDs)
			if txErr != nil {
				return txErr
			}

			items, total, txErr := s.reserveStock(ctx, tx, input.SizeQuantities)
			if txErr != nil {
				return txErr
			}

			order = &domain.Order{
				ID:         uuid.New(),
				CustomerID: customer.ID,
				Customer:   customer,
				Products:   products,
				Items:      items,
				TotalPrice: total,
				Status:     domain.OrderStatusReceived,
				CreatedAt:  time.Now().UTC(),
			}

			return tx.Orders().Create(ctx, order)
		})

		if isSerializationFailure(err) {
			s.logger.Warn("Checkout transaction conflict, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
	)

	s.notifier.NotifyOrderReceived(customer, order)

	return order, nil
}

// resolveCustomer returns the stored customer for the email, creating one
// from the submitted profile only when none exists. An existing customer is
// returned as-is: repeat orders never overwrite a stored address.
func (s *orderService) resolveCustomer(ctx context.Context, tx repository.Store, candidate domain.Customer) (*domain.Customer, error) {
	existing, err := tx.Customers().FindByEmail(ctx, candidate.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrCustomerNotFound) {
		return nil, err
	}

	customer := candidate
	customer.ID = uuid.New()
	customer.CreatedAt = time.Now().UTC()
	if err := tx.Customers().Create(ctx, &customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

// reserveStock validates and decrements stock for every requested size.
// Size ids are processed in sorted order so concurrent checkouts acquire
// row locks in the same sequence.
func (s *orderService) reserveStock(ctx context.Context, tx repository.Store, requested map[uuid.UUID]int) (map[uuid.UUID]int, decimal.Decimal, error) {
	sizeIDs := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		sizeIDs = append(sizeIDs, id)
	}
	sort.Slice(sizeIDs, func(i, j int) bool {
		return sizeIDs[i].String() < sizeIDs[j].String()
	})

	items := make(map[uuid.UUID]int, len(requested))
	total := decimal.Zero
	productCache := make(map[uuid.UUID]*domain.Product)

	for _, sizeID := range sizeIDs {
		quantity := requested[sizeID]

		size, err := tx.ProductSizes().FindByIDForUpdate(ctx, sizeID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		if size.Quantity < quantity {
			return nil, decimal.Zero, &InsufficientStockError{
				SizeID:    sizeID,
				Requested: quantity,
				Available: size.Quantity,
			}
		}

		if err := tx.ProductSizes().DecrementStock(ctx, sizeID, quantity); err != nil {
			return nil, decimal.Zero, err
		}

		product, ok := productCache[size.ProductID]
		if !ok {
			product, err = tx.Products().FindByID(ctx, size.ProductID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			productCache[size.ProductID] = product
		}

		items[sizeID] = quantity
		total = total.Add(LineCharge(product, quantity))
	}

	return items, total, nil
}

// GetOrders returns one page of orders. pageNum is 1-based, the page size
// is fixed, and sortField must be one of the allow-listed names; anything
// else is rejected before any query runs.
func (s *orderService) GetOrders(ctx context.Context, status *domain.OrderStatus, pageNum int, sortDir, sortField string) ([]*domain.Order, int, error) {
	column, err := sortColumn(sortField)
	if err != nil {
		return nil, 0, err
	}

	if pageNum < 1 {
		pageNum = 1
	}

	order := repository.SortOrderDesc
	if sortDir == "asc" || sortDir == "ASC" {
		order = repository.SortOrderAsc
	}

	return s.store.Orders().List(ctx, status, pageNum, OrdersPageSize, column, order)
}

func sortColumn(sortField string) (repository.OrderSortField, error) {
	switch sortField {
	case "totalPrice":
		return repository.OrderSortByTotalPrice, nil
	case "createdAt", "":
		return repository.OrderSortByCreatedAt, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidSortField, sortField)
	}
}

// UpdateStatus overwrites the order's status and notifies the customer.
// There is no transition matrix: any status may follow any other, and a
// cancellation does not put reserved stock back.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var customer *domain.Customer
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if err := tx.Orders().UpdateStatus(ctx, id, status); err != nil {
			return err
		}

		customer, err = tx.Customers().FindByID(ctx, order.CustomerID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)

	s.notifier.NotifyStatusChanged(customer, status)

	return nil
}

// AnnounceNewArrival broadcasts a new-arrival notification for the product
// to every known customer email.
func (s *orderService) AnnounceNewArrival(ctx context.Context, productID uuid.UUID) error {
	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return err
	}

	emails, err := s.store.Customers().FindAllEmails(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Broadcasting new arrival",
		zap.String("product_id", productID.String()),
		zap.Int("recipients", len(emails)),
	)

	s.notifier.NotifyNewArrival(emails, product)

	return nil
}

// isSerializationFailure reports whether err is a Postgres serialization or
// deadlock failure, the only class of error worth retrying automatically.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
