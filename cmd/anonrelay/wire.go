package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/config"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/cache"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/metrics"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/repository"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/service"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/usecase"
)

type app struct {
	config   config.Config
	db       *gorm.DB
	rdb      *redis.Client
	relay    *usecase.RelayUsecase
	signal   *service.SignalService
	registry *prometheus.Registry
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(cfg.Server.LogLevel)
	return cfg, nil
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	return database.New(cfg.Server.DBDriver, cfg.Server.DSN, database.Pool{
		MaxOpenConns: cfg.Server.MaxOpenConns,
		MaxIdleConns: cfg.Server.MaxIdleConns,
	}, cfg.Server.DebugSQL)
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	relayConfig, err := cfg.Domain()
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &app{
		config:   cfg,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	if cfg.Server.RedisAddr != "" {
		a.rdb, err = database.NewRedis(ctx, cfg.Server.RedisAddr, cfg.Server.RedisPassword, cfg.Server.RedisDB)
		if err != nil {
			return nil, err
		}
		a.signal = service.NewSignalService(a.rdb, cfg.Server.EventsChannel)
	}

	stores := repository.NewStores(db)

	ttl, err := config.Duration(cfg.Server.CodeCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid server.codeCacheTTL: %w", err)
	}
	var codes repository.CodeCache = cache.NewLocalCodeCache(ttl)
	if cfg.Server.MemcachedAddr != "" {
		codes = cache.NewMemcacheCodeCache(database.NewMemcached(cfg.Server.MemcachedAddr), ttl)
	}
	stores.Identities = repository.NewCachedIdentityRepository(stores.Identities, codes)

	switch cfg.Server.PendingStore {
	case "database":
	case "redis":
		if a.rdb == nil {
			return nil, fmt.Errorf("server.pendingStore=redis requires server.redisAddr")
		}
		pendingTTL, err := config.Duration(cfg.Server.PendingTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid server.pendingTTL: %w", err)
		}
		stores.Pending = repository.NewRedisPendingRepository(a.rdb, pendingTTL)
	default:
		return nil, fmt.Errorf("unsupported server.pendingStore: %s", cfg.Server.PendingStore)
	}

	opts := []usecase.RelayOption{
		usecase.WithObserver(metrics.NewRecorder(a.registry)),
	}
	if a.signal != nil {
		opts = append(opts, usecase.WithEvents(a.signal))
	}
	a.relay = usecase.NewRelayUsecase(relayConfig, stores, opts...)

	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func shutdownTimeout(cfg config.Config) time.Duration {
	d, err := config.Duration(cfg.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
