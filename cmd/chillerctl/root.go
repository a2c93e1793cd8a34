package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"chiller-selector/internal/config"
	"chiller-selector/internal/database"
	"chiller-selector/internal/logger"
	"chiller-selector/internal/services"
)

type rootOptions struct {
	configFile string
	verbose    bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "chillerctl",
		Short: "Chiller catalog import and selection",
		Long: `chillerctl loads manufacturer rating tables into the chiller catalog and
selects the best matching unit for a required capacity and ambient.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML file with selector settings")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newImportCmd(opts),
		newSearchCmd(opts),
		newStatsCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// load reads configuration and builds the logger. Logging stays off unless
// --verbose is set so command output is not interleaved with log lines.
func (o *rootOptions) load() (*config.Config, *logger.Logger) {
	if o.configFile != "" {
		_ = os.Setenv("CONFIG_FILE", o.configFile)
	}
	cfg := config.Load()
	if o.verbose {
		return cfg, logger.New(cfg, "chillerctl")
	}
	return cfg, logger.Nop()
}

// openStore connects to the configured database and makes sure the schema exists.
func openStore(ctx context.Context, cfg *config.Config) (*bun.DB, *services.ChillerStore, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := services.NewChillerStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, store, nil
}
