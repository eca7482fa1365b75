// Package cli implements campusctl, the operator command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campusnet/internal/config"
	"campusnet/internal/dbmysql"
	"campusnet/internal/logging"
)

var validFormats = []string{"text", "json"}

// Options holds the global flags.
type Options struct {
	ConfigFile string
	Format     string
	Verbose    bool
}

// Env is how commands reach configuration and the database.
type Env struct {
	LoadConfig func(path string) (*config.Config, error)
	OpenDB     func(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error)
	Now        func() time.Time
}

// DefaultEnv reads real configuration and connects to the configured store.
func DefaultEnv() Env {
	return Env{
		LoadConfig: config.Load,
		OpenDB:     openDB,
		Now:        time.Now,
	}
}

func NewRootCommand(env Env) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "campusctl",
		Short:         "Operate a campusnet deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (defaults to environment only)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newMigrateCommand(env, opts))
	cmd.AddCommand(newConversationsCommand(env, opts))
	cmd.AddCommand(newSweepStoriesCommand(env, opts))
	cmd.AddCommand(newTokenCommand(env, opts))
	return cmd
}

func openDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := dbmysql.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

type session struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	close func()
}

func loadConfig(env Env, opts *Options) (*config.Config, *zap.Logger, error) {
	cfg, err := env.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	log := zap.NewNop()
	if opts.Verbose {
		cfg.Logging.OutputPath = "stderr"
		if log, err = logging.New(cfg.Logging); err != nil {
			return nil, nil, err
		}
	}
	return cfg, log, nil
}

func openSession(env Env, opts *Options) (*session, error) {
	cfg, log, err := loadConfig(env, opts)
	if err != nil {
		return nil, err
	}
	db, closeDB, err := env.OpenDB(cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, db: db, close: closeDB}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
