// @title           Portfolio Contact API
// @version         1.0
// @description     Contact form backend: validation, honeypot filtering, cooldown and email delivery.
// @BasePath        /v1
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/portfolio-site/contact-backend/config"
	"github.com/portfolio-site/contact-backend/handlers"
	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/router"
	"github.com/portfolio-site/contact-backend/services"
	"github.com/portfolio-site/contact-backend/store"
	"github.com/portfolio-site/contact-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	sessionSweepInterval = time.Minute
	redisTimestampTTL    = 24 * time.Hour
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, healthChecks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Contact.Store, err)
	}
	defer closeStore()

	sender := newSender(cfg)

	metrics := services.NewContactMetrics(prometheus.DefaultRegisterer)
	registry := services.NewSessionRegistry(kv, sender, cfg.Contact.StorageKey, cfg.Contact.SessionIdleTTL(), metrics,
		services.WithCooldown(cfg.Contact.Cooldown()),
		services.WithLocation(cfg.Contact.Location()),
	)
	defer registry.CloseAll()
	go registry.Run(ctx, sessionSweepInterval)

	healthService := services.NewHealthService(healthChecks, cfg.Server.Version)
	healthService.SetActiveSessionsGetter(registry.Count)

	r := router.SetupRouter(router.Dependencies{
		Config:         cfg,
		ContactHandler: handlers.NewContactHandler(registry),
		HealthHandler:  handlers.NewHealthHandler(healthService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"provider", cfg.Contact.Provider,
			"store", cfg.Contact.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
}

// openStore builds the configured timestamp store together with the health
// checks it needs and a function releasing its resources.
func openStore(ctx context.Context, cfg *config.Config) (store.KeyValueStore, map[string]store.Pinger, func(), error) {
	switch cfg.Contact.Store {
	case config.StoreRedis:
		redisOptions := &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		if cfg.Redis.UseTLS {
			redisOptions.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
		client := redis.NewClient(redisOptions)
		rs := store.NewRedisStore(client, store.WithTTL(redisTimestampTTL))

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return rs, map[string]store.Pinger{"redis": rs}, func() { _ = client.Close() }, nil

	case config.StoreSQLite:
		ss, err := store.OpenSQLiteStore(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return ss, map[string]store.Pinger{"sqlite": ss}, func() { _ = ss.Close() }, nil

	default:
		return store.NewMemoryStore(), nil, func() {}, nil
	}
}

func newSender(cfg *config.Config) types.EmailSender {
	if cfg.Contact.Provider == config.ProviderResend {
		return services.NewEmailService(&cfg.Email)
	}
	return services.NewEmailJSSender(cfg.EmailJS)
}
