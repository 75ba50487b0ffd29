package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/category"
	categoryStore "github.com/MrJamesThe3rd/barkeep/internal/category/store"
	"github.com/MrJamesThe3rd/barkeep/internal/config"
	"github.com/MrJamesThe3rd/barkeep/internal/database"
	"github.com/MrJamesThe3rd/barkeep/internal/export"
	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	financeStore "github.com/MrJamesThe3rd/barkeep/internal/finance/store"
	barkeepHttp "github.com/MrJamesThe3rd/barkeep/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/barkeep/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/barkeep/internal/http/export"
	financeHandler "github.com/MrJamesThe3rd/barkeep/internal/http/finance"
	importHandler "github.com/MrJamesThe3rd/barkeep/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/barkeep/internal/http/matching"
	orderHandler "github.com/MrJamesThe3rd/barkeep/internal/http/order"
	"github.com/MrJamesThe3rd/barkeep/internal/http/ratelimit"
	searchHandler "github.com/MrJamesThe3rd/barkeep/internal/http/search"
	"github.com/MrJamesThe3rd/barkeep/internal/importer"
	"github.com/MrJamesThe3rd/barkeep/internal/logging"
	"github.com/MrJamesThe3rd/barkeep/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/barkeep/internal/matching/store"
	"github.com/MrJamesThe3rd/barkeep/internal/notify"
	"github.com/MrJamesThe3rd/barkeep/internal/order"
	orderStore "github.com/MrJamesThe3rd/barkeep/internal/order/store"
	"github.com/MrJamesThe3rd/barkeep/internal/search"
	searchStore "github.com/MrJamesThe3rd/barkeep/internal/search/store"
	"github.com/MrJamesThe3rd/barkeep/internal/session"
	"github.com/MrJamesThe3rd/barkeep/internal/viewcache"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.Notify.Backend == config.NotifyRedis {
		rdb, err = database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
	}

	notifier, closeNotifier, err := notify.New(cfg, rdb, logger)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	defer closeNotifier()

	var cacheClient *redis.Client
	if cfg.Cache.Enabled {
		cacheClient = rdb
	}

	views := viewcache.New(cacheClient, cfg.Cache.TTL, logger)

	var (
		orderService    = order.NewService(orderStore.New(db), notifier, views, logger)
		financeService  = finance.NewService(financeStore.New(db), views, cfg.Ledger.SubmitterTag, logger)
		categoryService = category.NewService(categoryStore.New(db))
		searchService   = search.NewService(searchStore.New(db, cfg.Search.MaxRows), cfg.Search.QueryTimeout, logger).WithRoutes(cfg.Search.Routes)
		matchingService = matching.NewService(matchingStore.New(db))
		importService   = importer.NewService(matchingService, logger)
		exportService   = export.NewService(financeService)
	)

	limit, err := ratelimit.New(cfg.RateLimit.Rate, rdb)
	if err != nil {
		return err
	}

	router := barkeepHttp.New(barkeepHttp.Handlers{
		Orders:     orderHandler.NewHandler(orderService),
		Finance:    financeHandler.NewHandler(financeService),
		Categories: categoryHandler.NewHandler(categoryService),
		Search:     searchHandler.NewHandler(searchService),
		Import:     importHandler.NewHandler(importService, financeService),
		Matching:   matchingHandler.NewHandler(matchingService),
		Export:     exportHandler.NewHandler(exportService),
	}, barkeepHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      limit,
		Session:        session.Middleware([]byte(cfg.Auth.JWTSecret)),
		Cached:         views.Middleware,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "cache", cacheClient != nil, "notify", cfg.Notify.Backend)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
