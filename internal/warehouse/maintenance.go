package warehouse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cityretail/cityretail-etl/internal/logging"
)

// MaintenanceScripts are executed verbatim after every successful load
// to rebuild the reporting views and their indexes.
var MaintenanceScripts = []string{"kpi_views.sql", "kpi_indexes.sql"}

// Execer is the subset of pgx connection behavior the maintenance
// runner needs; both pgx.Conn and pgxpool.Pool satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunMaintenanceScripts executes the KPI view and index scripts from
// dir. The first failure stops the sequence and is returned; the caller
// decides whether it is fatal (for loads it never is: views and indexes
// are derived artifacts, not primary data).
func RunMaintenanceScripts(ctx context.Context, exec Execer, dir string) error {
	for _, name := range MaintenanceScripts {
		path := filepath.Join(dir, name)
		script, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read maintenance script %s: %w", name, err)
		}
		if _, err := exec.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to execute maintenance script %s: %w", name, err)
		}
		logging.Info().Str("script", name).Msg("Executed maintenance script")
	}
	return nil
}
