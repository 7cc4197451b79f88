// Package main provides the entry point for the relations-sqlite CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relations-dil/go-relations-sqlite/cmd/relations-sqlite/commands"
	"github.com/relations-dil/go-relations-sqlite/pkg/version"
)

func main() {
	globals := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "relations-sqlite",
		Short: "Relations SQLite - declare models, generate DDL, keep a database in shape",
		Long: `relations-sqlite compiles YAML model declarations into SQLite DDL
and applies them to a database.

Commands:
  schema    Print the DDL a models file generates
  migrate   Apply a models file's DDL to the configured database
  status    Compare declared models against the database`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globals.ConfigPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&globals.JSONLogs, "json-logs", false, "log in JSON")

	// Add commands.
	rootCmd.AddCommand(commands.NewSchemaCommand(globals))
	rootCmd.AddCommand(commands.NewMigrateCommand(globals))
	rootCmd.AddCommand(commands.NewStatusCommand(globals))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "relations-sqlite %s\n", version.String())
		},
	}
}
