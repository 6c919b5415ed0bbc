package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"luvsick-store/internal/config"
	custommiddleware "luvsick-store/internal/middleware"
	"luvsick-store/internal/notification"
	"luvsick-store/internal/repository"
	"luvsick-store/internal/service"
	"luvsick-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config     *config.Config
	logger     *zap.Logger
	db         *sql.DB
	redis      *redis.Client
	dispatcher *notification.Dispatcher
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, dispatcher *notification.Dispatcher) *Server {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize store and services
	store := repository.NewStore(db)
	orderService := service.NewOrderService(store, dispatcher, logger)
	userService := service.NewUserService(
		store.Users(),
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.TokenExpiry)*time.Minute,
	)

	// Initialize handlers
	orderHandler := transport.NewOrderHandler(orderService, logger)
	productHandler := transport.NewProductHandler(orderService, logger)
	userHandler := transport.NewUserHandler(userService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	rateLimitMiddleware := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:orders",
	}, logger)

	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware, rateLimitMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	userHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:     cfg,
		logger:     logger,
		db:         db,
		redis:      redisClient,
		dispatcher: dispatcher,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Drain pending notifications before dropping connections
	if s.dispatcher != nil {
		s.dispatcher.Close()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
