package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/qwerty-development/gym-webapp-sub000/internal/activity"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/bundle"
	"github.com/qwerty-development/gym-webapp-sub000/internal/cancellation"
	"github.com/qwerty-development/gym-webapp-sub000/internal/config"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/logger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/notify"
	"github.com/qwerty-development/gym-webapp-sub000/internal/purchase"
	"github.com/qwerty-development/gym-webapp-sub000/internal/server"
	"github.com/qwerty-development/gym-webapp-sub000/internal/user"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

// @title Studio API
// @version 1.0
// @description Bookings, wallets and the refund ledger for a training studio.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat))
	logger.Info("Starting studio application")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	issuer, err := auth.NewIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("Failed to create token issuer: %v", err)
	}

	notifier := notify.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.Notify)
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := notifier.Ping(ctx); err != nil {
		logger.Warn("Notification queue unreachable, cancellations will not be announced", "error", err)
	}
	go notifier.Start(ctx)

	tx := db.NewTxManager(database)
	userRepo := user.NewRepository(database)
	walletRepo := wallet.NewRepository(database)
	ledgerRepo := ledger.NewRepository(database)
	marketRepo := market.NewRepository(database)
	activityRepo := activity.NewRepository(database)
	bookingRepo := booking.NewRepository(database)
	bundleRepo := bundle.NewRepository(database)

	srv := server.New(cfg, issuer, database, notifier, server.Handlers{
		User:     user.NewHandler(user.NewService(tx, userRepo, walletRepo, issuer)),
		Wallet:   wallet.NewHandler(wallet.NewService(tx, walletRepo, ledgerRepo)),
		Ledger:   ledger.NewHandler(ledgerRepo),
		Market:   market.NewHandler(marketRepo),
		Activity: activity.NewHandler(activity.NewService(activityRepo)),
		Booking:  booking.NewHandler(booking.NewService(tx, bookingRepo, activityRepo, walletRepo, ledgerRepo)),
		Cancellation: cancellation.NewHandler(cancellation.NewService(
			tx, bookingRepo, walletRepo, activityRepo, marketRepo, ledgerRepo, userRepo, notifier,
		)),
		Purchase: purchase.NewHandler(purchase.NewService(tx, bookingRepo, walletRepo, marketRepo, ledgerRepo)),
		Bundle:   bundle.NewHandler(bundle.NewService(tx, bundleRepo, walletRepo, ledgerRepo)),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		serverErrChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		if err != nil {
			logger.Errorf("Server error: %v", err)
		}
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	cancel()

	logger.Info("Server stopped")
}
