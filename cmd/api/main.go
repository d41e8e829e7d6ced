package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/roamr-backend/internal/api"
	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/config"
	"github.com/baharkarakas/roamr-backend/internal/logger"
	"github.com/baharkarakas/roamr-backend/internal/metrics"
	"github.com/baharkarakas/roamr-backend/internal/services"
	"github.com/baharkarakas/roamr-backend/internal/tracing"
	"github.com/baharkarakas/roamr-backend/internal/worker"
)

const (
	serviceName     = "roamr-backend"
	eventQueueSize  = 1024
	shutdownTimeout = 10 * time.Second
)

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	metrics.Init()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, serviceName, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", "err", err)
		}
	}()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	wp := worker.NewPool(cfg.WorkerCount, eventQueueSize)
	defer wp.Stop()

	infra, err := openIntegrations(ctx, cfg, wp, log)
	if err != nil {
		return err
	}
	defer infra.close()

	opts := append(infra.options(), services.WithLogger(log), services.WithCascadeBatch(cfg.CascadeBatchSize))

	tokens := auth.NewTokenManager(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	deps := api.RouterDeps{
		Cfg:        cfg,
		Tokens:     tokens,
		UserSvc:    services.NewUserService(repos.Users, tokens, opts...),
		ListingSvc: services.NewListingService(repos.Listings, repos.Reviews, repos.AuditLogs, opts...),
		QuerySvc:   services.NewQueryService(repos.Listings),
		ReviewSvc:  services.NewReviewService(repos.Reviews, repos.Listings, repos.AuditLogs, opts...),
	}
	if infra.images != nil {
		deps.Uploader = infra.images
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
