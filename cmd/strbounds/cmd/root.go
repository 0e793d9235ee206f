// Package cmd implements the strbounds command line.
package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/internal/core/catalog"
	"github.com/solatis/strbounds/internal/core/config"
	"github.com/solatis/strbounds/internal/core/db"
	"github.com/solatis/strbounds/internal/logging"
)

// Version is the strbounds release.
const Version = "0.1.0"

// options holds the persistent flags and the configuration they produce.
type options struct {
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "strbounds",
		Short:   "Anchored string matching rules",
		Long:    `strbounds filters strings with nested starts/ends/contains/equals rules, from the command line or over gRPC.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")

	rootCmd.AddCommand(newFilterCmd(opts))
	rootCmd.AddCommand(newExplainCmd(opts))
	rootCmd.AddCommand(newRuleSetCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newAPIKeyCmd(opts))
	rootCmd.AddCommand(newFilterAPICmd(opts))

	return rootCmd
}

// load reads configuration and sets up logging. Flags given on the command
// line override the environment and the config file.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		cfg.Database.URL = o.dbURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// openDB opens the configured database.
func (o *options) openDB(ctx context.Context) (*sqlx.DB, error) {
	database, err := db.Open(ctx, o.cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	return database, nil
}

// openQueries opens the database, refuses to run against a schema with
// pending migrations and loads the named queries.
func (o *options) openQueries(ctx context.Context) (*db.Queries, func(), error) {
	database, err := o.openDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	pending, err := db.Pending(ctx, database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to check migrations: %w", err)
	}
	if pending {
		database.Close()
		return nil, nil, fmt.Errorf("database has pending migrations - run 'strbounds migrate' first")
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return queries, func() { database.Close() }, nil
}

// openCatalog is openQueries plus a catalog bounded by the configured limits.
func (o *options) openCatalog(ctx context.Context) (*catalog.Catalog, func(), error) {
	queries, closeDB, err := o.openQueries(ctx)
	if err != nil {
		return nil, nil, err
	}
	return catalog.New(queries, o.cfg.FilterAPI.CompileOptions()), closeDB, nil
}
