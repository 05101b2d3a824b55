package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/paybridge"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/router"
	"github.com/iliyamo/skycomfort-server/internal/seed"
	"github.com/iliyamo/skycomfort-server/internal/service"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	log, cfg := a.log, a.cfg

	if serveMigrate {
		if err := a.migrate(ctx, "up"); err != nil {
			return err
		}
	}
	if a.db == nil && cfg.AutoSeed {
		if _, err := seed.Seed(ctx, a.store, cfg.BcryptCost, log); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; response cache off, rate limiting per process")
	} else {
		defer rdb.Close()
	}

	var events queue.Publisher = queue.Noop{}
	if cfg.RabbitURL != "" {
		events = queue.NewAMQPPublisher(cfg.RabbitURL, cfg.OrderQueue, log)
	} else {
		log.Info("RABBITMQ_URL not set; order events are not published")
	}
	defer events.Close()

	users := service.NewUserService(a.store, cfg.BcryptCost)
	catalog := service.NewCatalogService(a.store)
	orders := service.NewOrderService(a.store, events, log)
	e := router.New(router.Deps{
		Env:   cfg.Env,
		Store: a.store,
		Auth: service.NewAuthService(service.AuthConfig{
			JWTSecret:        cfg.JWTSecret,
			AccessTTLMin:     cfg.AccessTTLMin,
			RefreshTTLDays:   cfg.RefreshTTLDays,
			AllowStaffSignup: cfg.AllowStaffSignup,
		}, users, a.store),
		Users:     users,
		Catalog:   catalog,
		Orders:    orders,
		Payments:  service.NewPaymentService(a.store, events, log),
		Sync:      service.NewSyncService(orders, catalog, log),
		Bridge:    paybridge.NewChannel(paybridge.NewProcessor(paybridge.NewCardStore(), cfg.PaymentDelay), log),
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Log:       log,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
