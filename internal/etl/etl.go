package etl

import (
	"context"

	"github.com/cityretail/cityretail-etl/internal/config"
	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/warehouse"
)

// Options controls a pipeline run.
type Options struct {
	// ForcePreprocess re-cleans the raw extracts even when cleaned
	// snapshots already exist.
	ForcePreprocess bool

	// Incremental forces incremental mode; Full forces full mode.
	// With neither set the mode is auto-detected from warehouse state.
	Incremental bool
	Full        bool
}

// Run orchestrates one ETL run: wait for the warehouse, pick the load
// mode, then clean and load.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	logging.Info().Msg("Starting CityRetail ETL run")

	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	if err := warehouse.WaitUntilReady(ctx, cfg, warehouse.DefaultRetryOptions()); err != nil {
		return err
	}

	mode := warehouse.ModeFull
	switch {
	case opts.Incremental:
		mode = warehouse.ModeIncremental
	case opts.Full:
		mode = warehouse.ModeFull
	default:
		decision := warehouse.DetectLoadMode(ctx, cfg)
		mode = decision.Mode
		if decision.DetectionErr != nil {
			logging.Warn().Err(decision.DetectionErr).Msg("Mode detection failed, falling back to full load")
		}
	}
	logging.Info().Str("mode", mode.String()).Msg("Load mode selected")

	engine := NewEngine(cfg)

	if mode == warehouse.ModeIncremental {
		return engine.RunIncremental(ctx)
	}

	snap := NewSnapshotStore(cfg.CleanedDir())
	if !opts.ForcePreprocess && snap.Exists(SnapshotNames...) {
		logging.Info().Msg("Cleaned snapshots already exist, skipping preprocessing")
	} else {
		if err := cleanAll(cfg, snap); err != nil {
			return err
		}
	}

	return engine.RunFull(ctx)
}

// cleanAll runs the full cleaning pass: load every raw extract,
// transform, and write fresh cleaned snapshots.
func cleanAll(cfg *config.Config, snap *SnapshotStore) error {
	logging.Info().Msg("Cleaning raw extracts")

	raw := LoadRawTables(cfg.RawDir())
	if err := raw.Require("products", "stores", "calendar", "sales", "cities_lookup"); err != nil {
		return err
	}

	stores := StandardizeCityNames(raw.Stores, raw.Cities)
	calendar := ParseCalendarDates(raw.Calendar)
	sales, err := CoerceSales(raw.Sales)
	if err != nil {
		return err
	}

	if err := WriteSnapshot(snap, "products", raw.Products); err != nil {
		return err
	}
	if err := WriteSnapshot(snap, "stores", stores); err != nil {
		return err
	}
	if err := WriteSnapshot(snap, "calendar", calendar); err != nil {
		return err
	}
	return WriteSnapshot(snap, "sales", sales)
}
