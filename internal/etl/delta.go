package etl

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/model"
	"github.com/cityretail/cityretail-etl/internal/warehouse"
)

// querier is the query behavior shared by pgx.Conn, pgx.Tx and
// pgxpool.Pool.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FetchExistingKeys retrieves the set of primary key values currently
// present in the warehouse table.
func FetchExistingKeys(ctx context.Context, q querier, spec warehouse.TableSpec) (map[int64]struct{}, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, spec.SelectKeysSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing keys from %s: %w", spec.Name, err)
	}
	defer rows.Close()

	existing := make(map[int64]struct{})
	for rows.Next() {
		var key int64
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key from %s: %w", spec.Name, err)
		}
		existing[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keys from %s: %w", spec.Name, err)
	}
	return existing, nil
}

// FilterNew returns the delta: rows whose key is not in the existing
// set. Rows with a present key are excluded even when their non-key
// fields differ; this is delta by key presence, not change capture.
func FilterNew[T model.Row](rows []T, existing map[int64]struct{}) []T {
	filtered := make([]T, 0, len(rows))
	for _, row := range rows {
		if _, ok := existing[row.Key()]; !ok {
			filtered = append(filtered, row)
		}
	}
	if skipped := len(rows) - len(filtered); skipped > 0 {
		logging.Debug().Int("skipped", skipped).Msg("Filtered rows already present in warehouse")
	}
	return filtered
}

// rowValues materializes the parameter rows for a bulk insert, in the
// table's registered column order.
func rowValues[T model.Row](rows []T) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = row.Values()
	}
	return out
}

// buildUpsertBatch queues one upsert per row. The conflict branch only
// fires if a key appeared between delta detection and the upsert.
func buildUpsertBatch(spec warehouse.TableSpec, rows [][]any) *pgx.Batch {
	batch := &pgx.Batch{}
	sql := spec.UpsertSQL()
	for _, values := range rows {
		batch.Queue(sql, values...)
	}
	return batch
}
