// Package sqlite persists relations models in SQLite.
//
// A Source opens (or wraps) a database handle, registers itself by name,
// and executes the create, retrieve, update, delete, and labels operations
// for every schema bound to that name. Statements are prepared once and
// held in an LRU cache, and every operation is traced, measured, and
// logged through the configured providers. List and dict fields persist as
// JSON text and criteria reach into them with json_extract paths.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/relations-dil/go-relations-sqlite/internal/cache"
	"github.com/relations-dil/go-relations-sqlite/pkg/observability"
	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// DriverName is the database/sql driver the source opens.
const DriverName = "sqlite"

// instrumentationName scopes the source's tracer and meter.
const instrumentationName = "github.com/relations-dil/go-relations-sqlite/pkg/sqlite"

// Source executes model operations against one SQLite database.
type Source struct {
	name     string
	database string

	db    *sql.DB
	owned bool

	stmts        *cache.StmtCache
	stmtCapacity int

	registry *relations.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	meter    metric.Meter
	metrics  *observability.QueryMetrics
}

// Option adjusts a source under construction.
type Option func(*Source)

// WithDB wraps an already open handle instead of opening the database
// path. The caller keeps ownership and Close leaves the handle open.
func WithDB(db *sql.DB) Option {
	return func(s *Source) { s.db = db }
}

// WithRegistry registers the source somewhere other than the default
// registry.
func WithRegistry(registry *relations.Registry) Option {
	return func(s *Source) { s.registry = registry }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

// WithStmtCapacity bounds the prepared statement cache.
func WithStmtCapacity(capacity int) Option {
	return func(s *Source) { s.stmtCapacity = capacity }
}

// WithMeter sets the meter the source records query metrics through.
func WithMeter(meter metric.Meter) Option {
	return func(s *Source) { s.meter = meter }
}

// New opens the database and registers the source under name so schemas
// can bind to it. An in-memory database is pinned to a single connection,
// otherwise each pooled connection would see its own empty database.
func New(name, database string, opts ...Option) (*Source, error) {
	s := &Source{
		name:     name,
		database: database,
		registry: relations.DefaultRegistry,
		logger:   slog.Default(),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.db == nil {
		db, err := sql.Open(DriverName, database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		if inMemory(database) {
			db.SetMaxOpenConns(1)
		}

		s.db = db
		s.owned = true
	}

	metrics, err := observability.NewQueryMetrics(s.meter)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}

	s.metrics = metrics
	s.stmts = cache.New(s.db, s.stmtCapacity)

	s.registry.Register(s)

	s.logger.Debug("sqlite: source registered", "source", name, "database", database)

	return s, nil
}

// inMemory reports whether the path names a memory-backed database.
func inMemory(database string) bool {
	return database == ":memory:" ||
		strings.HasPrefix(database, "file::memory:") ||
		strings.Contains(database, "mode=memory")
}

// Name is the name schemas bind to.
func (s *Source) Name() string {
	return s.name
}

// Database is the path the source opened.
func (s *Source) Database() string {
	return s.database
}

// DB exposes the underlying handle for raw statements.
func (s *Source) DB() *sql.DB {
	return s.db
}

// StmtStats reports prepared statement cache usage.
func (s *Source) StmtStats() cache.Stats {
	return s.stmts.Stats()
}

// Close deregisters the source and releases its statements, closing the
// handle only when the source opened it.
func (s *Source) Close() error {
	s.registry.Deregister(s.name)

	err := s.stmts.Close()

	if s.owned {
		err = errors.Join(err, s.db.Close())
	}

	return err
}

// Migrate renders and executes the DDL for each schema in order. The
// statements are idempotent, so migrating an already defined schema is a
// no-op.
func (s *Source) Migrate(ctx context.Context, schemas ...*relations.Schema) error {
	for _, schema := range schemas {
		if err := s.define(ctx, schema); err != nil {
			return err
		}
	}

	return nil
}

// define renders and executes one schema's DDL, bypassing the statement
// cache.
func (s *Source) define(ctx context.Context, schema *relations.Schema) (err error) {
	ctx, done := s.instrument(ctx, "define", schema)
	defer func() { done(err) }()

	statements, err := Define(schema)
	if err != nil {
		return fmt.Errorf("define %s: %w", schema.Name, err)
	}

	for _, statement := range statements {
		if _, err = s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("define %s: %w", schema.Name, err)
		}
	}

	s.logger.InfoContext(ctx, "sqlite: schema defined",
		"source", s.name, "model", schema.Name, "statements", len(statements))

	return nil
}

// exec runs a write statement through the statement cache.
func (s *Source) exec(ctx context.Context, query string, values []any) (sql.Result, error) {
	stmt, err := s.stmts.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	result, err := stmt.ExecContext(ctx, values...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}

	return result, nil
}

// selectRows runs a query through the statement cache and scans every row
// into a column-keyed map, values left as the driver returned them.
func (s *Source) selectRows(ctx context.Context, query string, values []any) ([]map[string]any, error) {
	stmt, err := s.stmts.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	rows, err := stmt.QueryContext(ctx, values...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var scanned []map[string]any

	for rows.Next() {
		fields := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range fields {
			pointers[i] = &fields[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = fields[i]
		}

		scanned = append(scanned, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return scanned, nil
}

// instrument opens a span for one operation and returns the done callback
// that records its duration, status, and log line.
func (s *Source) instrument(ctx context.Context, op string, schema *relations.Schema) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "sqlite."+op,
		trace.WithAttributes(
			attribute.String("db.source", s.name),
			attribute.String("db.model", schema.Name),
			attribute.String("db.table", schema.Table),
		))

	release := s.metrics.TrackInflight(ctx, op)
	start := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(start)
		release()

		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		s.metrics.RecordQuery(ctx, op, schema.Table, status, elapsed)
		span.End()

		s.logger.DebugContext(ctx, "sqlite: operation finished",
			"op", op, "model", schema.Name, "status", status, "elapsed", elapsed)
	}
}
