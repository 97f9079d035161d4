package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/internal/statestore"
	"github.com/feedwatch/feedwatch/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// logger is built during setup once the config is validated.
var logger *contract.Logger

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "feedwatch",
	Short:              "Detect missing or abnormal data feed deliveries.",
	Long:               `Feedwatch watches periodic file feeds and alerts when a delivery is late, empty, or unusually sized compared to its own history.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".feedwatch") // Name of config file (without extension)
		viper.SetConfigType("yaml")       // We'll use YAML format
		viper.AddConfigPath(".")          // Look in the current directory
		viper.AddConfigPath("$HOME")      // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("FEEDWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("lookback", contract.DefaultLookbackDays)
	viper.SetDefault("rolling-window", contract.DefaultRollingWindow)
	viper.SetDefault("min-samples", contract.DefaultMinSamples)
	viper.SetDefault("window-threshold", int(contract.DefaultWindowThreshold/time.Minute))
	viper.SetDefault("size-bounds", fmt.Sprintf("%.0f,%.0f", contract.DefaultSizeLowerPercent, contract.DefaultSizeUpperPercent))
	viper.SetDefault("output", schema.TextMode)
	viper.SetDefault("state-backend", schema.SQLiteBackend)
	viper.SetDefault("state-db-connect", "")
	viper.SetDefault("notify", schema.NoNotify)
	viper.SetDefault("color", "yes")
}

// configSetup unmarshals config and runs validation. Commands that never
// touch the state store stop here.
func configSetup(_ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	logger = contract.NewLogger(cfg.Verbose, cfg.LogDir, time.Now())
	return nil
}

// sharedSetup is configSetup plus state-store initialization.
func sharedSetup(cmd *cobra.Command, args []string) error {
	if err := configSetup(cmd, args); err != nil {
		return err
	}
	if err := statestore.Init(cfg.StateBackend, cfg.StateDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
