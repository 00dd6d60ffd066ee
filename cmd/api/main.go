package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/campuskart/marketplace/internal/bootstrap"
	"github.com/campuskart/marketplace/internal/controller"
	"github.com/campuskart/marketplace/internal/gateway"
	"github.com/campuskart/marketplace/internal/repository/postgres"
	"github.com/campuskart/marketplace/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "marketplace-api", "marketplace")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	productRepo := postgres.NewProductRepository(app.Pool)
	transactionRepo := postgres.NewTransactionRepository(app.Pool)
	notificationRepo := postgres.NewNotificationRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Payment gateway ---
	gwCfg := app.Config.Gateway
	var gwClient gateway.Client
	if gwCfg.Provider == "razorpay" {
		gwClient = gateway.NewRazorpayClient(gwCfg.BaseURL, gwCfg.KeyID, gwCfg.KeySecret, gwCfg.RequestTimeout)
	} else {
		gwClient = gateway.NewMockClient()
	}
	breaker := gateway.NewBreaker(gwCfg.Provider, gwCfg.CircuitBreakerThreshold, gwCfg.CircuitBreakerTimeout)
	verifier := gateway.NewSignatureVerifier(gwCfg.KeySecret, gwCfg.WebhookSecret)

	// --- Services ---
	inventoryService := service.NewInventoryService(productRepo, app.Metrics, app.Logger)
	orderService := service.NewOrderService(
		transactionRepo,
		productRepo,
		outboxRepo,
		inventoryService,
		txManager,
		gwClient,
		breaker,
		verifier,
		gwCfg.Currency,
		app.Metrics,
		app.Logger,
	)
	notificationService := service.NewNotificationService(notificationRepo)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:                app.Pool,
		RedisClient:         app.Redis,
		OrderService:        orderService,
		InventoryService:    inventoryService,
		NotificationService: notificationService,
		Verifier:            verifier,
		IdempotencyRepo:     idempotencyRepo,
		Metrics:             app.Metrics,
		ServerConfig:        app.Config.Server,
		JWTSecret:           app.Config.Auth.JWTSecret,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
