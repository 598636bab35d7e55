//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for cityretail-etl.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cityretail/cityretail-etl/internal/config"
	"github.com/cityretail/cityretail-etl/internal/logging"
	"github.com/cityretail/cityretail-etl/internal/warehouse"
	"github.com/cityretail/cityretail-etl/pkg/version"
)

var (
	// Global flags
	cfgFile  string
	dataDir  string
	logLevel string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "cityretail-etl",
		Short: "Batch ETL pipeline for the CityRetail analytics warehouse",
		Long: `cityretail-etl reads raw CSV extracts (products, stores, sales,
calendar and a city-name lookup), cleans and standardizes them, and loads
them into a PostgreSQL star-schema warehouse.

It supports full reloads as well as incremental loads that reconcile the
extracts against warehouse state and persist only rows that are new.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./cityretail-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data root directory holding raw/, cleaned/ and logs/")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tablesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config; every run also keeps a
	// persistent log file next to the data.
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		File:   cfg.LogFile(),
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the warehouse tables",
	Long: `List the star-schema tables the pipeline loads, with their primary
key columns, in referential load order (dimensions first, facts last).`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Warehouse tables (load order):")
		cmd.Println()
		for _, spec := range warehouse.Tables() {
			cmd.Println(fmt.Sprintf("  %-12s key=%-10s columns: %s",
				spec.Name, spec.Key, strings.Join(spec.Columns, ", ")))
		}
	},
}
