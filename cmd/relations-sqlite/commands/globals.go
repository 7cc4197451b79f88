// Package commands implements the relations-sqlite subcommands.
package commands

import (
	"context"

	"github.com/relations-dil/go-relations-sqlite/internal/config"
	"github.com/relations-dil/go-relations-sqlite/pkg/observability"
	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
	"github.com/relations-dil/go-relations-sqlite/pkg/schemafile"
	"github.com/relations-dil/go-relations-sqlite/pkg/version"
)

// Globals carries the root command's persistent flags into subcommands.
type Globals struct {
	ConfigPath string
	Verbose    bool
	JSONLogs   bool
}

// loadConfig loads CLI configuration with flag overrides applied on top.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	if g.Verbose {
		cfg.Logging.Level = "debug"
	}

	if g.JSONLogs {
		cfg.Logging.JSON = true
	}

	return cfg, nil
}

// initObservability builds telemetry providers from CLI configuration.
func initObservability(cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = observability.ModeCLI
	obsCfg.OTLPEndpoint = cfg.Telemetry.Endpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.Headers)
	obsCfg.OTLPInsecure = cfg.Telemetry.Insecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = cfg.Logging.SlogLevel()
	obsCfg.LogJSON = cfg.Logging.JSON

	return observability.Init(obsCfg)
}

// shutdownQuietly flushes providers, logging instead of failing the command.
func shutdownQuietly(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// modelsPath resolves the models file path. An explicit argument wins over
// the configured default.
func modelsPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return cfg.Models
}

// loadModels loads and compiles a models file into wired schemas.
func loadModels(path string, extra ...relations.SchemaOption) (*schemafile.File, []*relations.Schema, error) {
	file, err := schemafile.Load(path)
	if err != nil {
		return nil, nil, err
	}

	schemas, err := schemafile.Build(file, extra...)
	if err != nil {
		return nil, nil, err
	}

	return file, schemas, nil
}
