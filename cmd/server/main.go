package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopdesk-be/internal/cart"
	"shopdesk-be/internal/category"
	"shopdesk-be/internal/config"
	"shopdesk-be/internal/db"
	"shopdesk-be/internal/expense"
	"shopdesk-be/internal/httpapi"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/middleware"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/product"
	"shopdesk-be/internal/report"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = listenAndServe
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := initDBFunc(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := newServer(ctx, cfg, database)
	if err != nil {
		return err
	}

	addr := ":" + cfg.AppPort
	logger.L().Info("server starting", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
	return startServerFunc(ctx, addr, handler)
}

// newServer wires repositories, services and middleware into one handler.
// The rate limiter and cart session cleanup loops stop with ctx.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (http.Handler, error) {
	store, err := cart.NewFileStore(cfg.CartStoreDir)
	if err != nil {
		return nil, fmt.Errorf("cart store: %w", err)
	}

	counters := metrics.NewRegistry()

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo, cfg.LowStockThreshold)

	categorySvc := category.NewService(category.NewRepository(database))

	orderSvc := order.NewService(order.NewRepository(database), productSvc, cfg.AdminTaxRate, counters)

	expenseRepo := expense.NewRepository(database)
	expenseSvc := expense.NewService(expenseRepo)

	reportSvc := report.NewService(productRepo, orderSvc, expenseRepo, cfg.LowStockThreshold)

	carts := cart.NewManager(store, productSvc, cfg.TaxRate)
	go carts.Run(ctx)

	h := &httpapi.Handler{
		Products:   productSvc,
		Categories: categorySvc,
		Carts:      carts,
		Orders:     orderSvc,
		Expenses:   expenseSvc,
		Reports:    reportSvc,
		Counters:   counters,
	}

	limiter := middleware.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	return setupRouter(h.Routes(), limiter, cfg.CORSOrigin), nil
}

// setupRouter wraps the routes with the middleware chain. Request ids are
// assigned first so every later layer can log them.
func setupRouter(routes http.Handler, limiter *middleware.Limiter, corsOrigin string) http.Handler {
	var h http.Handler = routes
	h = logger.LoggingMiddleware(h)
	h = limiter.Middleware(h)
	h = middleware.CORS(corsOrigin)(h)
	h = middleware.Scope(h)
	h = logger.RequestIDMiddleware(h)
	return h
}

func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
