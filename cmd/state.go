package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/internal/statestore"
	"github.com/feedwatch/feedwatch/schema"
)

// stateCmd groups the alert-state maintenance commands.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and maintain the persisted alert state",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// stateStatusCmd reports backend health and row counts.
var stateStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show state store backend, feed count and last save time",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := statestore.Get().Status()
		if err != nil {
			return err
		}
		fmt.Printf("Backend: %s\n", status.Backend)
		fmt.Printf("Connected: %t\n", status.Connected)
		fmt.Printf("Tracked feeds: %d\n", status.TotalFeeds)
		if !status.LastSaved.IsZero() {
			fmt.Printf("Last saved: %s\n", status.LastSaved.Format(contract.DateTimeFormat))
		}
		return nil
	},
}

// stateClearCmd removes all persisted alert state.
var stateClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Delete all persisted alert state",
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		dbFilePath := ""
		if cfg.StateBackend == schema.SQLiteBackend {
			dbFilePath = cfg.StateDBConnect
			if dbFilePath == "" {
				dbFilePath = contract.GetStateDBFilePath()
			}
		}
		if err := statestore.Clear(cfg.StateBackend, dbFilePath, cfg.StateDBConnect); err != nil {
			return err
		}
		fmt.Println("Alert state cleared")
		return nil
	},
}

// stateExportCmd writes the alert state to a Parquet file.
var stateExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the alert state to a Parquet file",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cfg.OutputFile
		if path == "" {
			path = "feedwatch_state.parquet"
		}
		rows, err := statestore.ExportParquet(statestore.Get(), path)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d feeds to %s\n", rows, path)
		return nil
	},
}

// stateMigrateCmd runs schema migrations on the state database.
var stateMigrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Run state database schema migrations",
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		return statestore.Migrate(cfg.StateBackend, cfg.StateDBConnect, targetVersion)
	},
}
