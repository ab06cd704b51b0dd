package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/queue"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume domain events and log them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap("fyyur-worker")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.AMQPURL == "" {
				return errors.New("RABBITMQ_URL is required for the worker")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			log.Info("event worker started", zap.String("queue", queue.EventsQueue))
			err = queue.Consume(ctx, cfg.AMQPURL, log, queue.LogHandler(log))
			if errors.Is(err, context.Canceled) {
				log.Info("event worker stopped")
				return nil
			}
			return err
		},
	}
}
