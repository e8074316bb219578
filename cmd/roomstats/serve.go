package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/roomstats/internal/analytics"
	"github.com/odyssey-erp/roomstats/internal/analytics/echarts"
	"github.com/odyssey-erp/roomstats/internal/analytics/export"
	analytichttp "github.com/odyssey-erp/roomstats/internal/analytics/http"
	"github.com/odyssey-erp/roomstats/internal/analytics/svg"
	"github.com/odyssey-erp/roomstats/internal/app"
	"github.com/odyssey-erp/roomstats/internal/auth"
	"github.com/odyssey-erp/roomstats/internal/observability"
	"github.com/odyssey-erp/roomstats/internal/view"
	"github.com/odyssey-erp/roomstats/jobs"
	"github.com/odyssey-erp/roomstats/report"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analytics dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.AppAddr = addr
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: APP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	b, err := openBackend(ctx, cfg, logger, false)
	if err != nil {
		logger.Error("open backend", slog.Any("error", err))
		return err
	}
	defer b.Close(logger)

	if cacheHelper := b.service.Cache(); cacheHelper != nil {
		if err := cacheHelper.ListenForInvalidation(ctx, analytics.BumpChannel); err != nil {
			logger.Warn("subscribe cache invalidation", slog.Any("error", err))
		}
	}

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		return err
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}

	gotenberg := report.NewClient(cfg.GotenbergURL, report.WithWaitDelay(500*time.Millisecond))
	analyticsHandler := analytichttp.NewHandler(
		logger,
		b.service,
		templates,
		svg.NewRenderer(),
		echarts.NewRenderer(),
		export.NewPDFExporter(gotenberg),
	)
	analyticsHandler.WithTimeout(cfg.AnalyticsQueryTimeout)
	analyticsHandler.WithDefaultLimit(cfg.AnalyticsTopLimit)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(redisOpt(cfg))
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	checks := []app.HealthCheck{
		{Name: "postgres", Check: b.pool.Ping},
		{Name: "gotenberg", Check: gotenberg.Ping},
	}
	if b.redis != nil {
		checks = append(checks, app.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return b.redis.Ping(ctx).Err()
		}})
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Tokens:           tokens,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
		Checks:           checks,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		return err
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
