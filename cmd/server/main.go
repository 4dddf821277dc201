package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/d999ss/haevn/config"
	"github.com/d999ss/haevn/internal/api/handler"
	"github.com/d999ss/haevn/internal/api/router"
	"github.com/d999ss/haevn/internal/capacity"
	"github.com/d999ss/haevn/internal/repository"
	"github.com/d999ss/haevn/internal/service"
	"github.com/d999ss/haevn/pkg/database"
	applogger "github.com/d999ss/haevn/pkg/logger"
	"github.com/d999ss/haevn/pkg/redis"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting haevn booking service",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. Database + migrations
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("getting underlying sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// 4. Redis (optional: degrade to in-process sequence and no rate limit)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, confirmation sequence falls back to in-process counter", zap.Error(err))
		rdb = nil
	}

	// 5. Repository, tier catalog, capacity tracker
	repo := repository.NewRepository(db)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	catalog, err := loadTierCatalog(startupCtx, repo)
	if err != nil {
		logger.Fatal("loading tier catalog failed", zap.Error(err))
	}
	logger.Info("tier catalog loaded", zap.Int("tiers", catalog.Len()))

	tracker, slots, err := seedCapacityTracker(startupCtx, repo)
	if err != nil {
		logger.Fatal("seeding capacity tracker failed", zap.Error(err))
	}
	logger.Info("capacity tracker seeded", zap.Int("slots", slots))

	// 6. Dependency injection: Repository → Service → Handler
	svc := service.NewService(cfg, repo, catalog, tracker, rdb, logger)
	h := handler.NewHandler(svc)

	// 7. Router
	engine := router.Setup(cfg, h, rdb, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 9. Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if closeDB, err := db.DB(); err == nil && closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}

// loadTierCatalog reads the migration-seeded tiers into the immutable
// catalog.
func loadTierCatalog(ctx context.Context, repo *repository.Repository) (*service.TierCatalog, error) {
	tiers, err := repo.Tier.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no experience tiers seeded")
	}
	return service.NewTierCatalog(tiers), nil
}

// seedCapacityTracker registers every active slot with its capacity and the
// booked count derived from CONFIRMED reservations.
func seedCapacityTracker(ctx context.Context, repo *repository.Repository) (*capacity.Tracker, int, error) {
	slots, err := repo.Slot.ListActive(ctx)
	if err != nil {
		return nil, 0, err
	}

	counts, err := repo.Reservation.ConfirmedCounts(ctx)
	if err != nil {
		return nil, 0, err
	}
	booked := make(map[string]int, len(counts))
	for _, c := range counts {
		booked[c.SlotID] = c.Booked
	}

	tracker := capacity.NewTracker()
	for i := range slots {
		tracker.Register(slots[i].SlotID, slots[i].Capacity, booked[slots[i].SlotID])
	}

	return tracker, len(slots), nil
}
