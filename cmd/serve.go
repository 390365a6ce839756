package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	config "todo-service.com/todo-service/internal/configs"
	"todo-service.com/todo-service/internal/database"
	httpapi "todo-service.com/todo-service/internal/http"
	"todo-service.com/todo-service/internal/ratelimit"
	"todo-service.com/todo-service/internal/services"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Creates the schema if needed and serves the todo HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if serveHost != "" || servePort != "" {
			host, port, _ := net.SplitHostPort(cfg.AppURL)
			if serveHost != "" {
				host = serveHost
			}
			if servePort != "" {
				port = servePort
			}
			cfg.AppURL = net.JoinHostPort(host, port)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gateway, err := database.Open(database.Options{
			DSN:          cfg.DatabaseDSN,
			MaxOpenConns: cfg.DatabaseMaxOpenConns,
		})
		if err != nil {
			return err
		}
		defer gateway.Close()

		if err := gateway.Migrate(ctx); err != nil {
			return err
		}

		limiter := ratelimit.Limiter(ratelimit.NewMemoryLimiter(cfg.RateLimit, time.Minute))
		if cfg.RedisAddr != "" {
			redisClient, err := config.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RedisRateLimitKey, cfg.RateLimit, time.Minute)
			logger.WithField("redis", cfg.RedisAddr).Info("using redis rate limiter")
		}

		taskService := services.NewTaskService(gateway, cfg.MaxTasks, logger)
		e := httpapi.NewServer(taskService, logger, httpapi.ServerOptions{
			Limiter:      limiter,
			AllowOrigins: cfg.CORSAllowOrigins,
		})

		go func() {
			logger.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("server stopped")
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("HTTP server shutdown timed out")
		}

		logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host, overrides APP_HOST")
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port, overrides APP_PORT")
	rootCmd.AddCommand(serveCmd)
}
