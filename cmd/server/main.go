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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpapi "webfinger/internal/http"
	"webfinger/internal/identity/builder"
	"webfinger/internal/identity/handler"
	"webfinger/internal/identity/service"
	"webfinger/internal/identity/source"
	"webfinger/internal/platform/config"
	"webfinger/internal/platform/httpserver"
	"webfinger/internal/platform/logger"
	"webfinger/internal/platform/metrics"
	"webfinger/internal/platform/redis"
	ratelimit "webfinger/internal/ratelimit/middleware"
	"webfinger/internal/ratelimit/store/bucket"
)

// main wires high-level dependencies and owns the server lifecycle. Business
// logic lives in the internal identity packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	kv, err := loadIdentities(cfg)
	if err != nil {
		return err
	}
	registry, _ := builder.Build(kv, builder.WithLogger(log), builder.WithRecorder(m))
	m.SetIdentitiesLoaded(registry.Len())

	svc, err := service.New(registry, service.WithRecorder(m))
	if err != nil {
		return fmt.Errorf("create lookup service: %w", err)
	}
	log.Info(fmt.Sprintf("Configured %d identities", svc.Count()))

	limiter, closeStore, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	router := httpapi.NewRouter(httpapi.Deps{
		WebFinger:      handler.New(svc, log),
		RateLimit:      ratelimit.New(limiter, log, ratelimit.WithDisabled(cfg.RateLimit.Disabled), ratelimit.WithRecorder(m)),
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	})

	servers := []*http.Server{httpserver.New(cfg.Addr, router)}
	if cfg.MetricsAddr != "" {
		servers = append(servers, httpserver.New(cfg.MetricsAddr, httpapi.NewMetricsRouter(reg)))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func loadIdentities(cfg config.Server) (source.KeyValues, error) {
	if cfg.IdentityFile == "" {
		return source.FromOS(), nil
	}
	kv, err := source.FromFile(cfg.IdentityFile)
	if err != nil {
		return nil, fmt.Errorf("load identity file: %w", err)
	}
	return kv, nil
}

// newLimiter picks the Redis store when REDIS_URL is set and keeps an
// in-memory store as the fallback behind the circuit breaker.
func newLimiter(ctx context.Context, cfg config.Server, log *slog.Logger) (*ratelimit.Limiter, func(), error) {
	memory := bucket.New()
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		limiter, err := ratelimit.NewLimiter(memory, cfg.RateLimit.Max, cfg.RateLimit.Window)
		if err != nil {
			return nil, nil, fmt.Errorf("create rate limiter: %w", err)
		}
		return limiter, func() {}, nil
	}

	log.Info("rate limit buckets stored in redis")
	limiter, err := ratelimit.NewLimiter(
		bucket.NewRedisBucketStore(client.Client),
		cfg.RateLimit.Max,
		cfg.RateLimit.Window,
		ratelimit.WithFallback(memory),
		ratelimit.WithLogger(log),
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("create rate limiter: %w", err)
	}
	return limiter, func() {
		if err := client.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}, nil
}
