package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
	"github.com/relations-dil/go-relations-sqlite/pkg/sqlite"
)

const (
	schemaCmdUse       = "schema [models-file]"
	schemaCmdShort     = "Print the DDL a models file generates"
	schemaSummaryFlag  = "summary"
	schemaSummaryUsage = "print a per-model summary table instead of SQL"
)

// NewSchemaCommand creates the schema subcommand.
func NewSchemaCommand(globals *Globals) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   schemaCmdUse,
		Short: schemaCmdShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			_, schemas, err := loadModels(modelsPath(cfg, args))
			if err != nil {
				return err
			}

			if summary {
				return writeSummary(cmd.OutOrStdout(), schemas)
			}

			return writeDDL(cmd.OutOrStdout(), schemas)
		},
	}

	cmd.Flags().BoolVar(&summary, schemaSummaryFlag, false, schemaSummaryUsage)

	return cmd
}

// writeDDL prints every schema's statements as executable SQL, parents
// before children.
func writeDDL(out io.Writer, schemas []*relations.Schema) error {
	for _, schema := range schemas {
		statements, err := sqlite.Define(schema)
		if err != nil {
			return fmt.Errorf("define %s: %w", schema.Name, err)
		}

		for _, statement := range statements {
			fmt.Fprintf(out, "%s;\n\n", statement)
		}
	}

	return nil
}

func writeSummary(out io.Writer, schemas []*relations.Schema) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"MODEL", "TABLE", "FIELDS", "UNIQUE", "INDEX"})

	for _, schema := range schemas {
		tbl.AppendRow(table.Row{
			schema.Name,
			tableName(schema),
			len(schema.Fields),
			len(schema.Unique),
			len(schema.Index),
		})
	}

	fmt.Fprintln(out, tbl.Render())
	color.New(color.FgGreen).Fprintf(out, "%d models\n", len(schemas))

	return nil
}

// tableName is the storage table name without the quoting Define emits.
func tableName(schema *relations.Schema) string {
	return strings.Trim(sqlite.Table(schema), "`")
}
