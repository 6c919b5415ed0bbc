package transport

import (
	"errors"
	"net/http"
	"strconv"

	"luvsick-store/internal/domain"
	"luvsick-store/internal/middleware"
	"luvsick-store/internal/repository"
	"luvsick-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerRequest carries the buyer profile submitted with a checkout.
type CustomerRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required,min=3,max=100"`
	City           string `json:"city" validate:"required,min=2,max=50"`
	Street         string `json:"street" validate:"required,min=3,max=100"`
	BuildingNumber string `json:"buildingNumber" validate:"required,min=1,max=10"`
	FlatNumber     string `json:"flatNumber" validate:"required,min=1,max=10"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,min=5,max=20"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Customer              CustomerRequest   `json:"customer" validate:"required"`
	ProductIDs            []uuid.UUID       `json:"productIds" validate:"required,min=1"`
	ProductSizeQuantities map[uuid.UUID]int `json:"productSizeQuantities" validate:"required,min=1,dive,gt=0"`
}

// CustomerResponse is the customer snapshot returned with an order.
type CustomerResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	City           string `json:"city"`
	Street         string `json:"street"`
	BuildingNumber string `json:"buildingNumber"`
	FlatNumber     string `json:"flatNumber"`
	PhoneNumber    string `json:"phoneNumber"`
}

// OrderProductResponse is one purchased product in the display set.
type OrderProductResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Discount int    `json:"discount"`
}

// OrderResponse is the response shape for a single order.
type OrderResponse struct {
	ID         string                 `json:"id"`
	Customer   *CustomerResponse      `json:"customer,omitempty"`
	Products   []OrderProductResponse `json:"products"`
	Items      map[string]int         `json:"itemPerQuantity"`
	TotalPrice string                 `json:"totalPrice"`
	Status     string                 `json:"status"`
	CreatedAt  string                 `json:"createdAt"`
}

// OrdersPageResponse is one page of the order query.
type OrdersPageResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int             `json:"total"`
	PageNum  int             `json:"pageNum"`
	PageSize int             `json:"pageSize"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. Creation is public (behind the
// rate limiter); querying and status changes are admin-only.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, rateLimitMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware)
			r.Post("/", h.CreateOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.GetOrders)
			r.Patch("/{id}/status", h.UpdateStatus)
		})
	})
}

// CreateOrder handles checkout requests
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.CreateOrderInput{
		Customer: domain.Customer{
			Email:          req.Customer.Email,
			Name:           req.Customer.Name,
			City:           req.Customer.City,
			Street:         req.Customer.Street,
			BuildingNumber: req.Customer.BuildingNumber,
			FlatNumber:     req.Customer.FlatNumber,
			PhoneNumber:    req.Customer.PhoneNumber,
		},
		ProductIDs:     req.ProductIDs,
		SizeQuantities: req.ProductSizeQuantities,
	}

	order, err := h.orderService.CreateOrder(r.Context(), input)
	if err != nil {
		h.respondOrderError(w, err, "Order creation failed")
		return
	}

	h.logger.Info("Order created", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toOrderResponse(order))
}

// GetOrders handles the paginated order query
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status *domain.OrderStatus
	if raw := q.Get("status"); raw != "" {
		s := domain.OrderStatus(raw)
		if !s.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
			return
		}
		status = &s
	}

	pageNum := 1
	if raw := q.Get("pageNum"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "pageNum must be a positive integer")
			return
		}
		pageNum = n
	}

	sortDir := q.Get("sortDir")
	if sortDir == "" {
		sortDir = "desc"
	}
	sortField := q.Get("sortField")
	if sortField == "" {
		sortField = "createdAt"
	}

	orders, total, err := h.orderService.GetOrders(r.Context(), status, pageNum, sortDir, sortField)
	if err != nil {
		h.respondOrderError(w, err, "Order query failed")
		return
	}

	resp := OrdersPageResponse{
		Orders:   make([]OrderResponse, 0, len(orders)),
		Total:    total,
		PageNum:  pageNum,
		PageSize: service.OrdersPageSize,
	}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}

	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles order status transitions
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, status); err != nil {
		h.respondOrderError(w, err, "Status update failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error, logMsg string) {
	var stockErr *service.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		h.logger.Info(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrProductSizeNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		h.logger.Info(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidSortField),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyOrder):
		h.logger.Debug(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:         order.ID.String(),
		Products:   make([]OrderProductResponse, 0, len(order.Products)),
		Items:      make(map[string]int, len(order.Items)),
		TotalPrice: order.TotalPrice.StringFixed(2),
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if order.Customer != nil {
		resp.Customer = &CustomerResponse{
			ID:             order.Customer.ID.String(),
			Email:          order.Customer.Email,
			Name:           order.Customer.Name,
			City:           order.Customer.City,
			Street:         order.Customer.Street,
			BuildingNumber: order.Customer.BuildingNumber,
			FlatNumber:     order.Customer.FlatNumber,
			PhoneNumber:    order.Customer.PhoneNumber,
		}
	}

	for _, product := range order.Products {
		resp.Products = append(resp.Products, OrderProductResponse{
			ID:       product.ID.String(),
			Name:     product.Name,
			Price:    product.Price.StringFixed(2),
			Discount: product.Discount,
		})
	}

	for sizeID, quantity := range order.Items {
		resp.Items[sizeID.String()] = quantity
	}

	return resp
}
