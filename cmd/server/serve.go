package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/config"
	"github.com/PA55ION/fyyur/internal/database"
	"github.com/PA55ION/fyyur/internal/middleware"
	"github.com/PA55ION/fyyur/internal/queue"
	"github.com/PA55ION/fyyur/internal/router"
	"github.com/PA55ION/fyyur/internal/service"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(parent context.Context, migrate bool) error {
	cfg, log, err := bootstrap("fyyur-api")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(dbOptions(cfg))
	if err != nil {
		log.Error("database connection failed", zap.Error(err))
		return err
	}
	defer db.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrate {
		applied, err := database.MigrateUp(ctx, db, cfg.DBDriver)
		if err != nil {
			return err
		}
		log.Info("migrations applied", zap.Ints("versions", applied))
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL, log)
	} else {
		log.Info("RABBITMQ_URL not set, domain events are discarded")
	}

	var limiter *middleware.Limiter
	if rl := config.LoadRateLimitConfig(); rl.Enabled {
		if rdb := config.NewRedisClient(); rdb != nil {
			defer rdb.Close()
			limiter = middleware.NewLimiter(rl, rdb)
		} else {
			log.Warn("redis unreachable, rate limiting disabled")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := router.New(router.Options{
		DB:          db,
		Query:       service.NewQueryService(db, service.SystemClock),
		Mutate:      service.NewMutationService(db, events, log),
		Log:         log,
		Limiter:     limiter,
		Registry:    reg,
		MetricsPath: cfg.MetricsPath,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func dbOptions(cfg config.Config) database.Options {
	return database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	}
}
