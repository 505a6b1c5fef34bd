package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"enroll/internal/platform/config"
	"enroll/internal/platform/httpserver"
	"enroll/internal/platform/logger"
	"enroll/internal/platform/metrics"
	"enroll/internal/register/handler"
	"enroll/internal/register/service"
	"enroll/internal/register/store"
	"enroll/internal/register/store/user"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, cleanup, err := buildUserStore(ctx, cfg)
	if err != nil {
		log.Error("store init failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	m := metrics.New(prometheus.DefaultRegisterer)

	svc, err := service.New(users,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithBcryptCost(cfg.BcryptCost),
	)
	if err != nil {
		log.Error("service init failed", "error", err.Error())
		os.Exit(1)
	}

	router := chi.NewRouter()
	handler.New(svc, log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting enroll", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildUserStore selects Postgres when DATABASE_URL is set, otherwise the
// in-memory store for local development.
func buildUserStore(ctx context.Context, cfg config.Server) (store.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		mem := user.NewInMemory()
		if err := user.SeedReserved(ctx, mem); err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if _, err := pool.Exec(ctx, user.Schema); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return user.NewPostgres(pool), pool.Close, nil
}
