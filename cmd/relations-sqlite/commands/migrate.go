package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relations-dil/go-relations-sqlite/internal/config"
	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
	"github.com/relations-dil/go-relations-sqlite/pkg/sqlite"
)

const (
	migrateCmdUse      = "migrate [models-file]"
	migrateCmdShort    = "Apply a models file's DDL to the configured database"
	migrateDryRunFlag  = "dry-run"
	migrateDryRunUsage = "print the DDL without touching the database"
)

// NewMigrateCommand creates the migrate subcommand.
func NewMigrateCommand(globals *Globals) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   migrateCmdUse,
		Short: migrateCmdShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			if dryRun {
				_, schemas, loadErr := loadModels(modelsPath(cfg, args))
				if loadErr != nil {
					return loadErr
				}

				return writeDDL(cmd.OutOrStdout(), schemas)
			}

			return runMigrate(cmd, cfg, args)
		},
	}

	cmd.Flags().BoolVar(&dryRun, migrateDryRunFlag, false, migrateDryRunUsage)

	return cmd
}

func runMigrate(cmd *cobra.Command, cfg *config.Config, args []string) error {
	providers, err := initObservability(cfg)
	if err != nil {
		return err
	}

	defer shutdownQuietly(providers)

	registry := relations.NewRegistry()

	source, err := sqlite.New(cfg.Source.Name, cfg.Source.Database,
		sqlite.WithRegistry(registry),
		sqlite.WithLogger(providers.Logger),
		sqlite.WithMeter(providers.Meter),
		sqlite.WithStmtCapacity(cfg.Source.StmtCapacity),
	)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	defer source.Close()

	// Models bind to the opened source regardless of the name the file
	// declares, so one models file can serve several databases.
	_, schemas, err := loadModels(modelsPath(cfg, args),
		relations.WithRegistry(registry),
		relations.WithSource(source.Name()),
	)
	if err != nil {
		return err
	}

	migrateErr := source.Migrate(cmd.Context(), schemas...)
	if migrateErr != nil {
		return migrateErr
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "defined %d models in %s\n", len(schemas), cfg.Source.Database)

	return nil
}
