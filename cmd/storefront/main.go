package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ikirezi/internal/app"
	"ikirezi/internal/config"
	"ikirezi/internal/server"
	"ikirezi/internal/util"
	"ikirezi/pkg/analytics"
	"ikirezi/pkg/cart"
	"ikirezi/pkg/catalog"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	cartTTL, err := config.ParseCartTTL(cfg.CartTTL)
	if err != nil {
		log.Fatalf("failed to parse cart ttl: %v", err)
	}

	catalogStore, err := buildCatalog(cfg)
	if err != nil {
		log.Fatalf("failed to init catalog: %v", err)
	}

	cartStorage, err := buildCartStorage(cfg, cartTTL)
	if err != nil {
		log.Fatalf("failed to init cart storage: %v", err)
	}

	sink, cleanup, err := buildAnalytics(cfg)
	if err != nil {
		log.Fatalf("failed to init analytics: %v", err)
	}
	defer cleanup()

	appCore, err := app.New(app.Config{
		Catalog: catalogStore,
		Cart:    cart.New(cartStorage, cart.WithSink(sink)),
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                    appCore,
		RedisAddr:              cfg.RedisAddr,
		RedisPassword:          cfg.RedisPassword,
		CartRateLimitPerMinute: cfg.CartRateLimitPerMinute,
		TrustForwarded:         cfg.TrustForwarded,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		slog.Info("storefront server listening", "addr", addr, "cart_storage", cfg.CartStorage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			slog.Info("shutting down", "signal", sig.String())
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "err", err)
	}
}

func buildCatalog(cfg config.FileConfig) (catalog.Store, error) {
	var store catalog.Store
	if cfg.DatabaseURL != "" {
		gormStore, err := catalog.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = gormStore
	} else {
		store = catalog.NewMemoryStore()
	}
	if cfg.SeedCatalog {
		if err := catalog.Seed(store); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func buildCartStorage(cfg config.FileConfig, ttl time.Duration) (cart.Storage, error) {
	switch cfg.CartStorage {
	case config.CartStorageFile:
		return cart.NewFileStorage(cfg.DataDir, "")
	case config.CartStorageRedis:
		return cart.NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.CartKey, ttl), nil
	default:
		return cart.NewMemoryStorage(), nil
	}
}

// buildAnalytics assembles the event sinks named in config. Events always
// reach logs; the Redis stream and AMQP exchange are added when configured.
func buildAnalytics(cfg config.FileConfig) (analytics.Sink, func(), error) {
	sinks := []analytics.Sink{analytics.NewLogSink()}
	cleanup := func() {}

	if cfg.AnalyticsStream != "" {
		streamSink, err := analytics.NewStreamSink(analytics.StreamSinkConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Stream:   cfg.AnalyticsStream,
		})
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, streamSink)
	}

	if cfg.AMQPURL != "" {
		amqpSink, err := analytics.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, amqpSink)
		cleanup = func() {
			if err := amqpSink.Close(); err != nil {
				slog.Warn("amqp sink close failed", "err", err)
			}
		}
	}

	if len(sinks) == 1 {
		return sinks[0], cleanup, nil
	}
	return analytics.NewMultiSink(sinks...), cleanup, nil
}
