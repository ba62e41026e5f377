package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wChoros/OpenEduLog-backend/internal/auth"
	"github.com/wChoros/OpenEduLog-backend/internal/config"
	"github.com/wChoros/OpenEduLog-backend/internal/db"
	apphttp "github.com/wChoros/OpenEduLog-backend/internal/http"
	"github.com/wChoros/OpenEduLog-backend/internal/repository"
	"github.com/wChoros/OpenEduLog-backend/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	// Sessions live in Redis when REDIS_ADDR is set, otherwise in the
	// sessions table alongside the rest of the data.
	var sessions session.Store = session.NewPostgresStore(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("connect to redis: %v", err)
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb)
		log.Printf("sessions: redis at %s", cfg.RedisAddr)
	} else {
		log.Print("sessions: postgres")
	}

	store := repository.NewStore(pool)
	authSvc := auth.NewService(store, sessions, cfg.SessionTTL, cfg.BcryptCost)
	server := apphttp.NewServer(cfg, authSvc, store)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
