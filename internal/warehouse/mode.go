package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cityretail/cityretail-etl/internal/config"
)

// LoadMode selects between a full reload and an incremental load.
type LoadMode int

const (
	// ModeFull replaces every warehouse table from the cleaned snapshots.
	ModeFull LoadMode = iota

	// ModeIncremental upserts only rows whose keys are absent.
	ModeIncremental
)

// String returns the mode name.
func (m LoadMode) String() string {
	if m == ModeIncremental {
		return "incremental"
	}
	return "full"
}

// ModeDecision is the outcome of load mode auto-detection. When the
// probe itself failed, Mode is ModeFull and DetectionErr carries the
// reason; a fallback is distinguishable from a genuine full decision.
type ModeDecision struct {
	Mode         LoadMode
	DetectionErr error
}

// DetectLoadMode inspects the product dimension to decide the load
// mode: any existing rows mean incremental, an empty table means full.
// A failed probe (missing table, unreachable warehouse) falls back to
// full; it never propagates the error, since a run that can safely
// start from scratch should not be blocked. The caller reads the
// fallback reason off the decision and reports it.
func DetectLoadMode(ctx context.Context, cfg *config.Config) ModeDecision {
	conn, err := pgx.Connect(ctx, cfg.ConnString())
	if err != nil {
		return ModeDecision{Mode: ModeFull, DetectionErr: err}
	}
	defer conn.Close(ctx)

	var count int64
	if err := conn.QueryRow(ctx, DimProduct.CountSQL()).Scan(&count); err != nil {
		return ModeDecision{Mode: ModeFull, DetectionErr: err}
	}

	if count > 0 {
		return ModeDecision{Mode: ModeIncremental}
	}
	return ModeDecision{Mode: ModeFull}
}
