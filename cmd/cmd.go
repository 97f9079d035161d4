// Package cmd defines the command-line interface for feedwatch.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the state subcommands to the parent state command
	stateCmd.AddCommand(stateStatusCmd)
	stateCmd.AddCommand(stateClearCmd)
	stateCmd.AddCommand(stateExportCmd)
	stateCmd.AddCommand(stateMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("metrics-dir", "m", "", "Directory holding daily feed.metrics snapshot files")
	rootCmd.PersistentFlags().StringP("feed-dir", "d", "", "Base directory of the live feed folders (enables fallback scanning)")
	rootCmd.PersistentFlags().String("state-backend", string(schema.SQLiteBackend), "State backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("state-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextMode), "Output format: text or table or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in table output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory for dated run log files")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Int("lookback", contract.DefaultLookbackDays, "Days of snapshot history to load")
	checkCmd.Flags().Int("rolling-window", contract.DefaultRollingWindow, "Samples per expected-window estimate")
	checkCmd.Flags().Int("min-samples", contract.DefaultMinSamples, "Minimum history samples before a feed is evaluated")
	checkCmd.Flags().Int("window-threshold", 10, "Window half-width in minutes around the median arrival")
	checkCmd.Flags().String("size-bounds", "10,90", "Percentile pair bounding normal file sizes")
	checkCmd.Flags().Bool("fallback-first", false, "Scan live folders before consulting snapshot records")
	checkCmd.Flags().String("feeds", "", "Comma-separated folder|pattern keys to evaluate (default: all feeds)")
	checkCmd.Flags().String("notify", string(schema.NoNotify), "Notification mode: none or smtp")
	checkCmd.Flags().String("smtp-host", "", "SMTP relay as host:port")
	checkCmd.Flags().String("smtp-from", "", "Sender address for alert mail")
	checkCmd.Flags().String("smtp-to", "", "Comma-separated alert recipients")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of captureCmd to Viper
	captureCmd.Flags().String("capture-patterns", "", "Comma-separated folder:pattern pairs to aggregate (default: one catch-all per folder)")
	if err := viper.BindPFlags(captureCmd.Flags()); err != nil {
		contract.LogFatal("Error binding capture flags", err)
	}

	// Bind all flags of stateMigrateCmd to Viper
	stateMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(stateMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding state migrate flags", err)
	}
}
