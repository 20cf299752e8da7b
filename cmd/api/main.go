package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/webstudio-labs/studio-backend/config"
	"github.com/webstudio-labs/studio-backend/internal/bootstrap"
	"github.com/webstudio-labs/studio-backend/internal/storage/postgres"
	"github.com/webstudio-labs/studio-backend/internal/studio/repository"
	"github.com/webstudio-labs/studio-backend/internal/studio/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	var (
		repo        service.SnapshotRepository
		redisClient *redis.Client
		pool        *pgxpool.Pool
	)

	switch cfg.Studio.SnapshotStore {
	case "postgres":
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		store := postgres.NewSnapshotStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure snapshot schema: %v", err)
		}
		repo = store
	default:
		redisClient, err = bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		repo = repository.NewSnapshotRepository(redisClient)
	}
	log.Printf("Snapshot store: %s", cfg.Studio.SnapshotStore)

	sessions := service.NewSessionManager(repo, nil, cfg.Studio.HistoryMaxEntries)

	janitor := service.NewJanitor(
		sessions,
		cfg.Studio.JanitorSchedule,
		time.Duration(cfg.Studio.SessionTTLMinutes)*time.Minute,
	)
	if err := janitor.Start(); err != nil {
		log.Fatalf("Failed to start session janitor: %v", err)
	}
	defer janitor.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  "studio-backend",
		Version:      cfg.App.Version,
		AllowOrigins: cfg.Server.AllowOrigins,
		Redis:        redisClient,
		DB:           pool,
		Sessions:     sessions,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
