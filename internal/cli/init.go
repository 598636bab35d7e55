package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/warehouse"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the warehouse star schema",
	Long: `Create the warehouse dimension and fact tables (dimproduct, dimstore,
dimdate, factsales) if they do not exist.

Example:
  cityretail-etl init
  cityretail-etl init --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing warehouse tables before creating the schema")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := warehouse.WaitUntilReady(ctx, cfg, warehouse.DefaultRetryOptions()); err != nil {
		return err
	}

	pool, err := warehouse.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if initDropExisting {
		logging.Warn().Msg("Dropping existing warehouse schema")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	logging.Info().Msg("Creating warehouse schema")
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().Msg("Warehouse schema ready")
	return nil
}
