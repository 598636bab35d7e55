package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cityretail/cityretail-etl/internal/etl"
	"github.com/cityretail/cityretail-etl/internal/logging"
)

var (
	runForce       bool
	runIncremental bool
	runFull        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL pipeline",
	Long: `Run the ETL pipeline against the warehouse. Without a mode flag the
load mode is auto-detected: a warehouse that already holds product rows
gets an incremental load, an empty one gets a full load.

Database credentials come from the environment: DB_HOST, DB_PORT,
DB_NAME, DB_USER, DB_PASS. All five are required.

Example:
  cityretail-etl run
  cityretail-etl run --incremental
  cityretail-etl run --full --force`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runForce, "force", false,
		"re-clean raw extracts even when cleaned snapshots exist")
	runCmd.Flags().BoolVar(&runIncremental, "incremental", false,
		"force incremental mode (load only rows with new keys)")
	runCmd.Flags().BoolVar(&runFull, "full", false,
		"force full mode (replace every warehouse table)")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runIncremental && runFull {
		return fmt.Errorf("--incremental and --full are mutually exclusive")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// An interrupt cancels between blocking calls; the warehouse keeps
	// whatever the run committed so far.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	if err := etl.Run(ctx, cfg, etl.Options{
		ForcePreprocess: runForce,
		Incremental:     runIncremental,
		Full:            runFull,
	}); err != nil {
		logging.Error().Err(err).Msg("ETL run failed")
		return err
	}

	logging.Info().Msg("ETL run complete")
	return nil
}
