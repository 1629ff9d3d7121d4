package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"vitrine/internal/backend"
	"vitrine/internal/cache"
	"vitrine/internal/config"
	"vitrine/internal/db"
	"vitrine/internal/httpserver"
	"vitrine/internal/logger"
	"vitrine/internal/metrics"
	"vitrine/internal/migrate"
	"vitrine/internal/repository/pushsub"
	"vitrine/internal/service/authrelay"
	"vitrine/internal/service/catalog"
	"vitrine/internal/service/checkout"
	"vitrine/internal/service/insights"
	"vitrine/internal/service/push"
	"vitrine/internal/service/session"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped with error", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "server stopped")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		pool *pgxpool.Pool
		subs = pushsub.NewMemory()
	)
	if cfg.DBDSN != "" {
		pool, err = db.Connect(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		if err := migrate.Apply(ctx, pool); err != nil {
			return err
		}
		subs = pushsub.NewPostgres(pool)
	} else {
		logg.Warn(ctx, "DB_DSN not set, push subscriptions are kept in memory")
	}

	var store cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		store = rc
	}
	closers = append(closers, store.Close)

	client, err := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, backend.WithObserver(m))
	if err != nil {
		return err
	}

	sessions := session.NewRegistry(cfg.SessionTTL)
	deps := httpserver.Deps{
		Catalog:  catalog.New(client, store, cfg.CatalogCacheTTL),
		Checkout: checkout.New(client),
		Orders:   client,
		Auth:     authrelay.New(client, 12*time.Hour),
		Merchant: client,
		Insights: insights.New(client),
		Push:     push.New(subs, client),
		Sessions: sessions,
		Metrics:  m,
		Options: httpserver.Options{
			SessionCookie:            cfg.SessionCookie,
			AuthCookie:               cfg.AuthCookie,
			CookieSecure:             cfg.CookieSecure,
			CORSOrigins:              cfg.CORSOrigins,
			OrderPollInterval:        cfg.OrderPollInterval,
			ThreadsPollInterval:      cfg.ThreadsPollInterval,
			ConversationPollInterval: cfg.ConversationPollInterval,
			MetricsHandler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		},
	}

	var pinger httpserver.Pinger
	if pool != nil {
		pinger = pool
	}
	gin.SetMode(gin.ReleaseMode)
	srv, err := httpserver.New(cfg.HTTPAddr, logg, pinger, deps)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logg.WithField(gctx, "addr", cfg.HTTPAddr), "starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweepSessions(gctx, sessions, cfg.SessionSweepInterval, m, logg)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sweepSessions evicts idle storefront sessions until ctx is done.
func sweepSessions(ctx context.Context, reg *session.Registry, every time.Duration, m *metrics.Metrics, logg *logger.Logger) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Sweep(); n > 0 {
				logg.Debug(logg.WithField(ctx, "evicted", n), "sessions swept")
			}
			m.SetSessions(reg.Len())
		}
	}
}
