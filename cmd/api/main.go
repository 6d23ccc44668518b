package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/mattbennet/lentra/internal/config"
	"github.com/mattbennet/lentra/internal/gateway"
	"github.com/mattbennet/lentra/internal/handler"
	"github.com/mattbennet/lentra/internal/ledger"
	"github.com/mattbennet/lentra/internal/logging"
	"github.com/mattbennet/lentra/internal/middleware"
	"github.com/mattbennet/lentra/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("lentra-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	totalsRepo := repository.NewTotalsRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	eventRepo := repository.NewTransferEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	gatewayClient := gateway.NewClient(cfg.GatewayURL)
	ledgerSvc := ledger.NewService(accountRepo, loanRepo, totalsRepo, transferRepo, eventRepo, gatewayClient, db, cfg)

	authH := handler.NewAuthHandler(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryH)*time.Hour)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	loanH := handler.NewLoanHandler(ledgerSvc)
	queryH := handler.NewQueryHandler(ledgerSvc)
	inboundH := handler.NewInboundHandler(ledgerSvc, cfg.InboundSecret)
	healthH := handler.NewHealthHandler(db)

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Auth(cfg.JWTSecret)(middleware.Idempotency(idempotencyRepo)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", healthH.Liveness)
	mux.HandleFunc("GET /health/ready", healthH.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authH.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)

	mux.Handle("POST /api/v1/deposits", authed(ledgerH.Deposit))
	mux.Handle("POST /api/v1/withdrawals", authed(ledgerH.Withdraw))
	mux.Handle("POST /api/v1/loans", authed(loanH.Borrow))
	mux.Handle("POST /api/v1/loans/repayments", authed(loanH.Repay))
	mux.Handle("POST /api/v1/loans/auto-repay", authed(loanH.EnableAutoRepay))
	mux.Handle("DELETE /api/v1/loans/auto-repay", authed(loanH.DisableAutoRepay))

	mux.Handle("GET /api/v1/accounts/me", middleware.Auth(cfg.JWTSecret)(http.HandlerFunc(queryH.MyAccount)))
	mux.Handle("GET /api/v1/accounts/{id}/balance", middleware.Auth(cfg.JWTSecret)(http.HandlerFunc(queryH.Balance)))
	mux.Handle("GET /api/v1/accounts/{id}/loan", middleware.Auth(cfg.JWTSecret)(http.HandlerFunc(queryH.Loan)))
	mux.Handle("GET /api/v1/accounts/{id}/available-borrow", middleware.Auth(cfg.JWTSecret)(http.HandlerFunc(queryH.AvailableBorrow)))
	mux.Handle("GET /api/v1/accounts/{id}/transfers", middleware.Auth(cfg.JWTSecret)(http.HandlerFunc(queryH.Transfers)))
	mux.Handle("GET /api/v1/pool", middleware.Auth(cfg.JWTSecret)(http.HandlerFunc(queryH.Pool)))

	// Authenticated by HMAC signature, not JWT.
	mux.HandleFunc("POST /api/v1/transfers/inbound", inboundH.ReceiveTransfer)

	var root http.Handler = mux
	root = middleware.Logging(root)
	root = middleware.Tracing(root)
	root = middleware.Recovery(root)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
