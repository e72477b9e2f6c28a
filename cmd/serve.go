package main

import (
	"context"
	"errors"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workspace-service/internal/handler"
	"workspace-service/internal/service"
	"workspace-service/internal/session"
	"workspace-service/internal/telemetry"
	"workspace-service/pkg/config"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.InitLogger(cfg); err != nil {
			return err
		}
		log := logger.GetLogger()
		defer func() { _ = log.Sync() }()
		log.Info("Starting workspace service...", cfg.LogConfig()...)

		migrate, _ := cmd.Flags().GetBool("migrate")
		return serve(cmd.Context(), cfg, log, migrate)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := telemetry.NewProvider(cfg, log)
	defer shutdownTelemetry()

	backend, err := openBackend(ctx, cfg, log, migrate)
	if err != nil {
		log.Error("Failed to open store", zap.Error(err))
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn("Failed to close store", zap.Error(err))
		}
	}()

	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	redisClient, err := session.Connect(ctx, &cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return err
	}
	defer func() { _ = redisClient.Close() }()
	sessions := session.NewStore(redisClient, jwtutil.Expiration())
	if err := prometheus.RegisterActiveSessions(activeSessions(sessions, log)); err != nil {
		log.Warn("Active sessions gauge not registered", zap.Error(err))
	}

	svc := service.New(backend, sessions, service.SystemClock{})
	e := handler.NewServer(svc, log, cfg.Server.ServiceName)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Create or update the store schema before serving")
	rootCmd.AddCommand(serveCmd)
}

// activeSessions counts live sessions in Redis so the gauge follows TTL expiry
func activeSessions(sessions *session.Store, log *zap.Logger) func() float64 {
	return func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := sessions.Count(ctx)
		if err != nil {
			log.Warn("Failed to count active sessions", zap.Error(err))
			return math.NaN()
		}
		return float64(n)
	}
}
