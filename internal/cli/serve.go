package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/config"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/db"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/handler"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/logging"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/observability"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/service"
)

type serveOptions struct {
	migrate bool
	metrics bool
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending migrations before serving")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", true, "expose prometheus metrics on /metrics")
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd(version string) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Configuration is read from the environment
and an optional .env file in the working directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, version)
		},
	}
	addServeFlags(cmd, opts)

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions, version string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	sessionTTL, err := cfg.Auth.SessionTTL()
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("env", "JWT_EXPIRES_IN").Wrap(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if opts.migrate {
		if err := migrateUp(cfg.Postgres); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)
	if !opts.metrics {
		registry = nil
	}

	store := db.New(pool)
	authSvc, err := service.NewAuthService(store, store, service.AuthConfig{
		JWTSecret:        cfg.Auth.JWTSecret,
		SessionTTL:       sessionTTL,
		ResetTTL:         cfg.Auth.ResetTTL(),
		BcryptCost:       cfg.Auth.BcryptCost,
		ExposeResetToken: cfg.Auth.ShowResetTokenForDemo,
	}, logger, metrics)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.Auth.ShowResetTokenForDemo {
		logger.Warn("SHOW_RESET_TOKEN_FOR_DEMO is enabled: reset secrets are returned in API responses; never enable this outside local demos")
	}

	gin.SetMode(ginMode(cfg.Server.GinMode))
	router := handler.NewRouter(handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authSvc),
		Tasks:          handler.NewTaskHandler(service.NewTaskService(store, logger)),
		Sessions:       authSvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins(),
		Logger:         logger,
		Metrics:        metrics,
		Registry:       registry,
		StartedAt:      time.Now(),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()
	logger.Info("server listening", "addr", srv.Addr)

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").With("addr", srv.Addr).Wrap(err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}

	logger.Info("server stopped")
	return nil
}

// ginMode falls back to release for unknown values; gin.SetMode panics on them.
func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
