//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cityretail/cityretail-etl/internal/config"
	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/model"
	"github.com/cityretail/cityretail-etl/internal/warehouse"
)

// bulkExecer is the connection behavior the full load needs; both
// pgxpool.Pool and pgx.Tx satisfy it.
type bulkExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// batchTx is the transaction behavior the incremental load needs;
// pgx.Tx satisfies it.
type batchTx interface {
	querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Engine performs warehouse loads from cleaned data. Tables always
// load in dependency order: product, store and date dimensions first,
// the sales fact last.
type Engine struct {
	cfg  *config.Config
	snap *SnapshotStore
}

// NewEngine creates a load engine for the given configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		cfg:  cfg,
		snap: NewSnapshotStore(cfg.CleanedDir()),
	}
}

// RunFull replaces every warehouse table with the content of its
// cleaned snapshot, then refreshes the KPI views and indexes.
func (e *Engine) RunFull(ctx context.Context) error {
	logging.Info().Msg("Starting full warehouse load")
	start := time.Now()

	pool, err := warehouse.Connect(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := e.runFull(ctx, pool); err != nil {
		return err
	}

	logging.Info().Dur("elapsed", time.Since(start)).Msg("Full warehouse load complete")

	runMaintenance(ctx, pool, e.cfg.ScriptsDir)
	return nil
}

// runFull executes the full-reload sequence. The fact table is cleared
// once up front, before any dimension is touched, so its foreign keys
// never block the dimension deletes; it is reloaded last.
func (e *Engine) runFull(ctx context.Context, db bulkExecer) error {
	if _, err := db.Exec(ctx, warehouse.FactSales.DeleteAllSQL()); err != nil {
		return fmt.Errorf("failed to clear %s: %w", warehouse.FactSales.Name, err)
	}
	logging.Info().Str("table", warehouse.FactSales.Name).Msg("Cleared fact table")

	if err := replaceFromSnapshot[model.Product](ctx, db, e.snap, warehouse.DimProduct, "products"); err != nil {
		return err
	}
	if err := replaceFromSnapshot[model.Store](ctx, db, e.snap, warehouse.DimStore, "stores"); err != nil {
		return err
	}
	if err := replaceFromSnapshot[model.Calendar](ctx, db, e.snap, warehouse.DimDate, "calendar"); err != nil {
		return err
	}
	return replaceFromSnapshot[model.Sale](ctx, db, e.snap, warehouse.FactSales, "sales")
}

// replaceFromSnapshot reads one cleaned snapshot and loads it with
// replace semantics: delete everything, bulk-insert every row.
func replaceFromSnapshot[T model.Row](ctx context.Context, db bulkExecer, snap *SnapshotStore, spec warehouse.TableSpec, name string) error {
	start := time.Now()

	rows, err := ReadSnapshot[T](snap, name)
	if err != nil {
		return err
	}
	if err := replaceTable(ctx, db, spec, rowValues(rows)); err != nil {
		logging.Error().Err(err).Str("table", spec.Name).Msg("Full load failed")
		return err
	}

	logging.Info().
		Str("table", spec.Name).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("Replaced table")
	return nil
}

func replaceTable(ctx context.Context, db bulkExecer, spec warehouse.TableSpec, rows [][]any) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, spec.DeleteAllSQL()); err != nil {
		return fmt.Errorf("failed to clear %s: %w", spec.Name, err)
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := db.CopyFrom(ctx, pgx.Identifier{spec.Name}, spec.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk insert into %s: %w", spec.Name, err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("bulk insert into %s wrote %d of %d rows", spec.Name, n, len(rows))
	}
	return nil
}

// RunIncremental reconciles the raw extracts against the warehouse:
// per table it upserts only the rows whose keys are absent, appending
// them to the cleaned snapshot first. One connection, one transaction,
// one commit at the very end.
func (e *Engine) RunIncremental(ctx context.Context) error {
	logging.Info().Msg("Starting incremental warehouse load")
	start := time.Now()

	raw := LoadRawTables(e.cfg.RawDir())
	if err := raw.Require("products", "stores", "calendar", "sales", "cities_lookup"); err != nil {
		return err
	}

	stores := StandardizeCityNames(raw.Stores, raw.Cities)
	calendar := ParseCalendarDates(raw.Calendar)
	sales, err := CoerceSales(raw.Sales)
	if err != nil {
		return fmt.Errorf("failed to coerce sales date keys: %w", err)
	}

	conn, err := warehouse.ConnectSingle(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	total := 0
	for _, load := range []func() (int, error){
		func() (int, error) {
			return loadTableIncremental(ctx, tx, e.snap, warehouse.DimProduct, "products", raw.Products)
		},
		func() (int, error) {
			return loadTableIncremental(ctx, tx, e.snap, warehouse.DimStore, "stores", stores)
		},
		func() (int, error) {
			return loadTableIncremental(ctx, tx, e.snap, warehouse.DimDate, "calendar", calendar)
		},
		func() (int, error) {
			return loadTableIncremental(ctx, tx, e.snap, warehouse.FactSales, "sales", sales)
		},
	} {
		n, err := load()
		if err != nil {
			return err
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit incremental load: %w", err)
	}

	logging.Info().
		Int("new_rows", total).
		Dur("elapsed", time.Since(start)).
		Msg("Incremental warehouse load complete")

	runMaintenance(ctx, conn, e.cfg.ScriptsDir)
	return nil
}

// loadTableIncremental applies one table's delta: fetch existing keys,
// filter the new rows, append them to the snapshot, then batch-upsert.
// An empty delta skips all persistence work for the table.
func loadTableIncremental[T model.Row](ctx context.Context, tx batchTx, snap *SnapshotStore, spec warehouse.TableSpec, name string, rows []T) (int, error) {
	start := time.Now()

	existing, err := FetchExistingKeys(ctx, tx, spec)
	if err != nil {
		return 0, err
	}

	newRows := FilterNew(rows, existing)
	if len(newRows) == 0 {
		logging.Info().Str("table", spec.Name).Msg("No new rows to insert")
		return 0, nil
	}

	if err := AppendSnapshot(snap, name, newRows); err != nil {
		return 0, err
	}

	if err := upsertRows(ctx, tx, spec, rowValues(newRows)); err != nil {
		logging.Error().Err(err).
			Str("table", spec.Name).
			Int("rows", len(newRows)).
			Msg("Upsert failed")
		return 0, fmt.Errorf("failed to upsert into %s: %w", spec.Name, err)
	}

	logging.Info().
		Str("table", spec.Name).
		Int("rows", len(newRows)).
		Dur("elapsed", time.Since(start)).
		Msg("Inserted new rows")
	return len(newRows), nil
}

func upsertRows(ctx context.Context, tx batchTx, spec warehouse.TableSpec, rows [][]any) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	batch := buildUpsertBatch(spec, rows)
	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

// runMaintenance refreshes the KPI views and indexes. Failures are
// logged and swallowed: derived artifacts never fail a load.
func runMaintenance(ctx context.Context, exec warehouse.Execer, dir string) {
	if err := warehouse.RunMaintenanceScripts(ctx, exec, dir); err != nil {
		logging.Error().Err(err).Msg("Failed to refresh KPI views and indexes")
		return
	}
	logging.Info().Msg("KPI views and indexes refreshed")
}
