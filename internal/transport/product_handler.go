package transport

import (
	"errors"
	"net/http"

	"luvsick-store/internal/middleware"
	"luvsick-store/internal/repository"
	"luvsick-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductHandler exposes the catalog announcement endpoint. Catalog CRUD
// lives elsewhere; this only triggers the new-arrival broadcast.
type ProductHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(orderService service.OrderService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers the product routes (admin only)
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/{id}/announce", h.Announce)
		})
	})
}

// Announce broadcasts a new-arrival notification for a product
func (h *ProductHandler) Announce(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.orderService.AnnounceNewArrival(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Announcement failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
