package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/config"
	"github.com/taskverse/taskverse-backend/internal/bootstrap"
	"github.com/taskverse/taskverse-backend/internal/logger"
	"github.com/taskverse/taskverse-backend/internal/ratelimit"
	"github.com/taskverse/taskverse-backend/internal/storage/postgres"
)

const serviceName = "taskverse-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	var store ratelimit.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		store = ratelimit.NewRedisStore(client)
		zlog.Info("rate limiting backed by redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		mem := ratelimit.NewMemoryStore()
		sweeper := mem.StartSweeper()
		defer sweeper.Stop()
		store = mem
		zlog.Info("rate limiting backed by in-memory store")
	}
	limiter := ratelimit.New(store, cfg.RateLimit.RequestsPerMinute)

	bootstrap.SetGinMode(cfg.App.Environment)
	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		DB:          db,
		Limiter:     limiter,
		Log:         zlog,
	})

	zlog.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
