/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the salary engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env, parse flags (config.go)
  2. Build the zap logger
  3. Initialize SQLite store, apply the city seed if one is configured
  4. Optionally put the Redis cache in front of the city table
  5. Create calculator, handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (environment variable in brackets):
  -port       HTTP server port (default: 8080)               [PORT]
  -db         SQLite database path (default: salary.db)      [DATABASE_PATH]
              Use ":memory:" for in-memory database
  -redis      Redis address, empty disables the cache        [REDIS_ADDR]
  -cache-ttl  City tax cache TTL (default: 10m)               [CITY_CACHE_TTL]
  -seed       "standard" or a JSON seed file                  [CITY_SEED]
  -dev        Development logging                             [LOG_DEV]

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close Redis and database connections
  4. Exit

EXAMPLES:
  # Run with file database and the built-in city table
  ./server -db="./data/salary.db" -seed=standard

  # Run with in-memory database and a Redis cache
  ./server -db=":memory:" -seed=standard -redis=localhost:6379

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/api"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/seed"
	"github.com/warp/salary-engine/store/cache"
	"github.com/warp/salary-engine/store/sqlite"
)

func main() {
	cfg := mustParseConfig()

	logger, err := newLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	if err := applySeed(context.Background(), store, cfg.Seed); err != nil {
		logger.Fatal("failed to seed city tax table", zap.String("seed", cfg.Seed), zap.Error(err))
	}

	// City table, optionally behind Redis
	var (
		table     salary.CityTaxTable = store
		cityCache *cache.CityTaxCache
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, lookups will go to the database", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()

		cityCache = cache.NewCityTaxCache(store, rdb, cfg.CacheTTL, logger.Named("cache.citytax"))
		table = cityCache
	}

	calc := salary.NewCalculator(table, salary.WithLogger(logger))
	handler := api.NewHandler(store, calc, cityCache, logger.Named("api"))
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("db", cfg.DBPath),
			zap.Bool("cache", cityCache != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// applySeed writes the configured seed into the store. An empty source is a no-op.
func applySeed(ctx context.Context, store *sqlite.Store, source string) error {
	records, err := seed.Load(source)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := store.SaveCityTaxBatch(ctx, records); err != nil {
		return err
	}
	zap.L().Info("seeded city tax table", zap.String("source", source), zap.Int("cities", len(records)))
	return nil
}
