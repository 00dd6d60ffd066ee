package controller

import (
	"time"

	"github.com/campuskart/marketplace/internal/gateway"
	"github.com/campuskart/marketplace/internal/infrastructure/config"
	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	customMW "github.com/campuskart/marketplace/internal/middleware"
	"github.com/campuskart/marketplace/internal/repository/postgres"
	"github.com/campuskart/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool                *pgxpool.Pool
	RedisClient         *redis.Client
	OrderService        *service.OrderService
	InventoryService    *service.InventoryService
	NotificationService *service.NotificationService
	Verifier            *gateway.SignatureVerifier
	IdempotencyRepo     *postgres.IdempotencyRepository
	Metrics             *observability.Metrics
	ServerConfig        config.ServerConfig
	JWTSecret           string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(customMW.RateLimit(deps.ServerConfig.RequestsPerMinute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.ServerConfig.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.ServerConfig.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.OrderService, deps.Verifier)
	transactionH := NewTransactionController(deps.OrderService)
	productH := NewProductController(deps.InventoryService)
	notificationH := NewNotificationController(deps.NotificationService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	auth := customMW.RequireAuth(deps.JWTSecret)
	idempotency := customMW.Idempotency(deps.IdempotencyRepo)

	r.Route("/payment", func(r chi.Router) {
		// The webhook authenticates by signature, not bearer token.
		r.Post("/webhook", paymentH.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.With(idempotency).Post("/create-order", paymentH.CreateOrder)
			r.Post("/verify-payment", paymentH.VerifyPayment)
			r.Get("/status/{transactionId}", paymentH.GetStatus)
		})
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Use(auth)
		r.Post("/", transactionH.Create)
		r.Get("/", transactionH.List)
		r.Get("/purchases", transactionH.ListPurchases)
		r.Get("/sales", transactionH.ListSales)
		r.Get("/{id}", transactionH.Get)
		r.Put("/{id}/status", transactionH.UpdateStatus)
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(auth)
		r.Post("/{id}/relist", productH.Relist)
		r.Get("/{id}/availability", productH.Availability)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", notificationH.List)
		r.Post("/{id}/read", notificationH.MarkRead)
		r.Post("/read-all", notificationH.MarkAllRead)
		r.Delete("/", notificationH.DeleteAll)
	})

	return r
}
