// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal
// services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"clientele/internal/addressing/gateway"
	addrmetrics "clientele/internal/addressing/metrics"
	"clientele/internal/addressing/lookup"
	"clientele/internal/client/events/kafka"
	"clientele/internal/client/handler"
	clientmetrics "clientele/internal/client/metrics"
	"clientele/internal/client/service"
	"clientele/internal/client/store/memory"
	"clientele/internal/client/store/postgres"
	"clientele/internal/platform/config"
	"clientele/internal/platform/httpserver"
	"clientele/internal/platform/logger"
	platformredis "clientele/internal/platform/redis"
	httptransport "clientele/internal/transport/http"
	"clientele/pkg/platform/circuit"
	"clientele/pkg/platform/middleware/auth"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Store: postgres when configured, in-memory otherwise.
	var store service.ClientStore = memory.New()
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.New(pool)
		log.Info("using postgres store")
	} else {
		log.Info("using in-memory store")
	}

	// Postal-code lookup, optionally cached through redis.
	var source lookup.Source = lookup.NewClient(cfg.Lookup.BaseURL,
		lookup.WithTimeout(cfg.Lookup.Timeout),
		lookup.WithLogger(log))
	rdb, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		source = lookup.NewCache(source, rdb.Client,
			lookup.WithCacheTTL(cfg.Lookup.CacheTTL),
			lookup.WithCacheLogger(log))
		log.Info("lookup cache enabled")
	}

	breaker := circuit.New("address-lookup",
		circuit.WithSlidingWindowSize(cfg.Breaker.SlidingWindowSize),
		circuit.WithMinimumCalls(cfg.Breaker.MinimumCalls),
		circuit.WithFailureRateThreshold(cfg.Breaker.FailureRateThreshold),
		circuit.WithSlowCallRateThreshold(cfg.Breaker.SlowCallRateThreshold),
		circuit.WithSlowCallDurationThreshold(cfg.Breaker.SlowCallThreshold),
		circuit.WithOpenStateDuration(cfg.Breaker.OpenStateDuration))
	addrmetrics.RegisterBreaker(breaker)

	validator := gateway.New(source, breaker,
		gateway.WithLogger(log),
		gateway.WithMetrics(addrmetrics.New()))

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(clientmetrics.New()),
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers,
			kafka.WithTopic(cfg.KafkaTopic),
			kafka.WithLogger(log))
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		svcOpts = append(svcOpts, service.WithEventPublisher(publisher))
		log.Info("address-changed events enabled", "brokers", cfg.KafkaBrokers)
	}
	svc := service.New(store, validator, svcOpts...)

	routerCfg := httptransport.Config{
		ClientHandler: handler.New(svc, log),
		Breaker:       breaker,
		Logger:        log,
	}
	if cfg.JWTSigningKey != "" {
		routerCfg.Verifier = auth.NewVerifier(cfg.JWTSigningKey)
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(routerCfg))

	go func() {
		log.Info("starting clientele", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
