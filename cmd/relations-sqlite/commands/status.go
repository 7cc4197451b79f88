package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relations-dil/go-relations-sqlite/internal/config"
	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
	"github.com/relations-dil/go-relations-sqlite/pkg/sqlite"
)

const (
	statusCmdUse   = "status [models-file]"
	statusCmdShort = "Compare declared models against the database"
)

// ErrDatabaseMissing is returned when the configured database file does not
// exist yet.
var ErrDatabaseMissing = errors.New("database does not exist")

// ErrTablesMissing is returned when declared tables are absent from the
// database.
var ErrTablesMissing = errors.New("declared tables missing from database")

// NewStatusCommand creates the status subcommand.
func NewStatusCommand(globals *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   statusCmdUse,
		Short: statusCmdShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			return runStatus(cmd, cfg, args)
		},
	}
}

func runStatus(cmd *cobra.Command, cfg *config.Config, args []string) error {
	_, schemas, err := loadModels(modelsPath(cfg, args))
	if err != nil {
		return err
	}

	// Stat before opening: the driver would create a missing file.
	info, statErr := os.Stat(cfg.Source.Database)
	if statErr != nil {
		return fmt.Errorf("%w: %s", ErrDatabaseMissing, cfg.Source.Database)
	}

	providers, err := initObservability(cfg)
	if err != nil {
		return err
	}

	defer shutdownQuietly(providers)

	source, err := sqlite.New(cfg.Source.Name, cfg.Source.Database,
		sqlite.WithRegistry(relations.NewRegistry()),
		sqlite.WithLogger(providers.Logger),
		sqlite.WithMeter(providers.Meter),
		sqlite.WithStmtCapacity(cfg.Source.StmtCapacity),
	)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	defer source.Close()

	present, err := tableNames(cmd.Context(), source.DB())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	missing := 0

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"MODEL", "TABLE", "STATUS", "ROWS"})

	for _, schema := range schemas {
		name := tableName(schema)

		if !present[name] {
			missing++

			tbl.AppendRow(table.Row{schema.Name, name, color.RedString("missing"), ""})

			continue
		}

		count, countErr := countRows(cmd.Context(), source.DB(), name)
		if countErr != nil {
			return countErr
		}

		tbl.AppendRow(table.Row{schema.Name, name, color.GreenString("present"), humanize.Comma(count)})
	}

	fmt.Fprintln(out, tbl.Render())

	if missing > 0 {
		color.New(color.FgRed).Fprintf(out, "%d of %d tables missing\n", missing, len(schemas))

		return ErrTablesMissing
	}

	color.New(color.FgGreen).Fprintf(out, "%d tables present, %s on disk\n", len(schemas), humanize.Bytes(uint64(info.Size())))

	return nil
}

func tableNames(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("read sqlite_master: %w", err)
	}

	defer rows.Close()

	names := make(map[string]bool)

	for rows.Next() {
		var name string

		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, fmt.Errorf("scan sqlite_master: %w", scanErr)
		}

		names[name] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("read sqlite_master: %w", rowsErr)
	}

	return names, nil
}

func countRows(ctx context.Context, db *sql.DB, name string) (int64, error) {
	var count int64

	err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", name)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}

	return count, nil
}
