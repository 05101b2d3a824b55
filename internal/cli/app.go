package cli

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/database"
	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/repository/memory"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// app holds what every subcommand needs. db is nil for the memory driver.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	db    *sql.DB
	store repository.Store
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	switch cfg.DBDriver {
	case "memory":
		a.store = memory.New()
		log.Warn("using in-memory store; data is lost on exit")
	default:
		db, err := database.Open(ctx, database.Options{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			_ = log.Sync()
			return nil, err
		}
		a.db = db
		a.store = repository.NewSQLStore(db)
		log.Info("connected to mysql", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("close database", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// migrate applies pending up migrations. The memory store has no schema.
func (a *app) migrate(ctx context.Context, direction string) error {
	if a.db == nil {
		a.log.Info("memory store has no schema; nothing to migrate")
		return nil
	}
	applied, err := database.Migrate(ctx, a.db, direction)
	if err != nil {
		return err
	}
	a.log.Info("migrations applied", zap.String("direction", direction), zap.Strings("files", applied))
	return nil
}
