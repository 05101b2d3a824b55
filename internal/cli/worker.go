package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume order events and append them to the galley log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.RabbitURL == "" {
			return fmt.Errorf("worker needs RABBITMQ_URL")
		}
		log, err := utils.NewLogger(cfg.Env)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		c := &queue.GalleyConsumer{URL: cfg.RabbitURL, Queue: cfg.OrderQueue, LogPath: cfg.GalleyLog, Log: log}
		log.Info("galley worker started", zap.String("queue", cfg.OrderQueue), zap.String("log", cfg.GalleyLog))
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
