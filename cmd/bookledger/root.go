package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"bookledger/internal/config"
	"bookledger/internal/observability"
	"bookledger/internal/store"
	"bookledger/internal/store/memory"
	"bookledger/internal/store/postgres"
)

const serviceName = "bookledger"

var version = "dev"

// app is the state shared by every subcommand once PersistentPreRunE has run.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "bookledger",
		Short:         "Bookstore inventory and sales ledger",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(serviceName, cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("store", config.StorePostgres, "store backend: postgres|memory")
	flags.String("database-url", "", "PostgreSQL connection string")
	flags.String("log-level", "info", "log level")
	bind(a.v, "store", flags.Lookup("store"))
	bind(a.v, "database.url", flags.Lookup("database-url"))
	bind(a.v, "log.level", flags.Lookup("log-level"))

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newAuditCmd(a))
	return root
}

// openStore connects to the configured backend. The postgres schema is applied on open
// so a fresh database is usable straight away.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.Store {
	case config.StoreMemory:
		a.logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		pg, err := postgres.Open(ctx, a.cfg.DatabaseURL, postgres.Options{
			MaxOpenConns:   a.cfg.MaxOpenConns,
			MaxIdleConns:   a.cfg.MaxOpenConns / 2,
			ConnectTimeout: a.cfg.ConnectTimeout,
		}, a.logger.Named("postgres"))
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return pg, nil
	}
}
