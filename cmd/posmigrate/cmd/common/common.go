// Package common holds the flags and connection setup shared by the
// posmigrate subcommands.
package common

import (
	"context"

	"go.uber.org/zap"
	"pos-migrate/internal/app/logging"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository/pg"
	"pos-migrate/internal/app/repository/sqlite"
	"pos-migrate/internal/config"
)

// Options are bound to the root command's persistent flags.
type Options struct {
	Verbose     bool
	SQLitePath  string
	DatabaseURL string
	PlanPath    string
}

var Opts Options

// Runtime is what a subcommand needs to run. Close releases whatever was
// opened.
type Runtime struct {
	Logger *zap.Logger
	Plan   *model.Plan
	Config *config.DatabaseConfig
	Source *sqlite.SQLiteDB
	Target *pg.PostgresDB
}

// Setup loads .env, builds the logger and plan, and opens the databases.
// withSource is false for commands that only use PostgreSQL.
func Setup(ctx context.Context, withSource bool) (*Runtime, error) {
	logger, err := logging.NewLogger(Opts.Verbose)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Logger: logger}

	envPath, err := config.LoadEnv()
	if err != nil {
		return rt, err
	}
	if envPath != "" {
		logger.Debug("Loaded environment file", zap.String("path", envPath))
	}

	overrides := config.DatabaseConfig{SQLitePath: Opts.SQLitePath, DatabaseURL: Opts.DatabaseURL}
	if withSource {
		rt.Config, err = config.GetDatabaseConfig(overrides)
	} else {
		rt.Config, err = config.GetTargetConfig(overrides)
	}
	if err != nil {
		return rt, err
	}

	rt.Plan, err = config.LoadPlan(Opts.PlanPath)
	if err != nil {
		return rt, err
	}

	if withSource {
		logger.Info("Opening SQLite", zap.String("path", rt.Config.SQLitePath))
		rt.Source, err = sqlite.NewSQLiteDB(ctx, rt.Config.SQLitePath)
		if err != nil {
			return rt, err
		}
	}

	logger.Info("Connecting to PostgreSQL", zap.String("dsn", config.RedactDSN(rt.Config.DatabaseURL)))
	rt.Target, err = pg.NewPostgresDB(ctx, rt.Config.DatabaseURL)
	if err != nil {
		return rt, err
	}
	return rt, nil
}

// Close closes both connections and flushes the logger.
func (rt *Runtime) Close() {
	if rt == nil {
		return
	}
	if rt.Source != nil {
		if err := rt.Source.Close(); err != nil {
			rt.Logger.Warn("Closing SQLite", zap.Error(err))
		}
	}
	if rt.Target != nil {
		if err := rt.Target.Close(); err != nil {
			rt.Logger.Warn("Closing PostgreSQL", zap.Error(err))
		}
	}
	if rt.Logger != nil {
		_ = rt.Logger.Sync()
	}
}
