package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/feedwatch/feedwatch/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays     = 7
	MaxLookbackDays         = 90
	DefaultRollingWindow    = 5
	DefaultMinSamples       = 5
	DefaultWindowThreshold  = 10 * time.Minute
	DefaultSizeLowerPercent = 10.0
	DefaultSizeUpperPercent = 90.0
)

// DateTimeFormat is the default date time representation in messages.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	MetricsDir string
	FeedDir    string

	Lookback        int // Days of snapshot history to load
	RollingWindow   int // Samples per expected-window estimate
	MinSamples      int // Below this, a feed is skipped
	WindowThreshold time.Duration

	SizeLowerPercent float64
	SizeUpperPercent float64

	FallbackFirst bool // Scan folders before raising arrival anomalies

	// Feeds limits a check run to specific feed keys; empty means every feed.
	Feeds []schema.FeedKey

	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
	Verbose    bool
	LogDir     string

	StateBackend   schema.DatabaseBackend
	StateDBConnect string // Please use env var as this is plaintext

	Notify   schema.NotifyMode
	SMTPHost string
	SMTPFrom string
	SMTPTo   []string

	// CapturePatterns maps folder names to the filename regexes captured
	// for them, parsed from "folder:pattern" pairs.
	CapturePatterns map[string][]string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	MetricsDir     string `mapstructure:"metrics-dir"`
	FeedDir        string `mapstructure:"feed-dir"`
	StateBackend   string `mapstructure:"state-backend"`
	StateDBConnect string `mapstructure:"state-db-connect"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	LogDir         string `mapstructure:"log-dir"`

	// --- Fields from checkCmd.Flags() ---
	Lookback        int    `mapstructure:"lookback"`
	RollingWindow   int    `mapstructure:"rolling-window"`
	MinSamples      int    `mapstructure:"min-samples"`
	WindowThreshold int    `mapstructure:"window-threshold"`
	SizeBounds      string `mapstructure:"size-bounds"`
	FallbackFirst   bool   `mapstructure:"fallback-first"`
	Feeds           string `mapstructure:"feeds"`
	Notify          string `mapstructure:"notify"`
	SMTPHost        string `mapstructure:"smtp-host"`
	SMTPFrom        string `mapstructure:"smtp-from"`
	SMTPTo          string `mapstructure:"smtp-to"`

	// --- Fields from captureCmd.Flags() ---
	CapturePatterns string `mapstructure:"capture-patterns"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDetectionParams(cfg, input); err != nil {
		return err
	}
	if err := processFeedFilter(cfg, input); err != nil {
		return err
	}
	if err := processNotifyConfig(cfg, input); err != nil {
		return err
	}
	if err := processCapturePatterns(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("state-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("state-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-detection fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.MetricsDir = strings.TrimSpace(input.MetricsDir)
	cfg.FeedDir = strings.TrimSpace(input.FeedDir)
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.LogDir = strings.TrimSpace(input.LogDir)

	if cfg.MetricsDir == "" {
		return fmt.Errorf("metrics-dir is required")
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, table, csv, json", input.Output)
	}

	// --- 2. Backend Validation ---
	cfg.StateBackend = schema.DatabaseBackend(strings.ToLower(input.StateBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StateBackend]; !ok {
		return fmt.Errorf("invalid state backend '%s'. must be sqlite, mysql, postgresql", input.StateBackend)
	}
	cfg.StateDBConnect = input.StateDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StateBackend, cfg.StateDBConnect); err != nil {
		return err
	}

	return nil
}

// processDetectionParams validates the statistical knobs of the detector.
func processDetectionParams(cfg *Config, input *ConfigRawInput) error {
	if input.Lookback <= 0 || input.Lookback > MaxLookbackDays {
		return fmt.Errorf("lookback must be between 1 and %d days (received %d)", MaxLookbackDays, input.Lookback)
	}
	cfg.Lookback = input.Lookback

	if input.RollingWindow <= 0 {
		return fmt.Errorf("rolling-window must be greater than 0 (received %d)", input.RollingWindow)
	}
	cfg.RollingWindow = input.RollingWindow

	if input.MinSamples <= 0 {
		return fmt.Errorf("min-samples must be greater than 0 (received %d)", input.MinSamples)
	}
	cfg.MinSamples = input.MinSamples

	if input.WindowThreshold <= 0 {
		return fmt.Errorf("window-threshold must be greater than 0 minutes (received %d)", input.WindowThreshold)
	}
	cfg.WindowThreshold = time.Duration(input.WindowThreshold) * time.Minute

	lower, upper, err := ParseSizeBounds(input.SizeBounds)
	if err != nil {
		return fmt.Errorf("invalid --size-bounds value: %w", err)
	}
	cfg.SizeLowerPercent = lower
	cfg.SizeUpperPercent = upper

	cfg.FallbackFirst = input.FallbackFirst
	return nil
}

// processFeedFilter parses the optional "folder|pattern" keys that limit a
// check run to specific feeds.
func processFeedFilter(cfg *Config, input *ConfigRawInput) error {
	cfg.Feeds = nil
	if input.Feeds == "" {
		return nil
	}
	for part := range strings.SplitSeq(input.Feeds, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := schema.ParseFeedKey(part)
		if err != nil {
			return fmt.Errorf("invalid feeds entry: %w", err)
		}
		cfg.Feeds = append(cfg.Feeds, key)
	}
	return nil
}

// WantsFeed reports whether the feed filter admits the key. An empty filter
// admits every feed.
func (c *Config) WantsFeed(key schema.FeedKey) bool {
	if len(c.Feeds) == 0 {
		return true
	}
	for _, k := range c.Feeds {
		if k == key {
			return true
		}
	}
	return false
}

// processNotifyConfig validates the notification settings.
func processNotifyConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Notify = schema.NotifyMode(strings.ToLower(input.Notify))
	if _, ok := schema.ValidNotifyModes[cfg.Notify]; !ok {
		return fmt.Errorf("invalid notify mode '%s'. must be none, smtp", input.Notify)
	}
	if cfg.Notify != schema.SMTPNotify {
		return nil
	}

	cfg.SMTPHost = strings.TrimSpace(input.SMTPHost)
	cfg.SMTPFrom = strings.TrimSpace(input.SMTPFrom)
	if cfg.SMTPHost == "" {
		return fmt.Errorf("smtp-host is required when notify is smtp")
	}
	if cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp-from is required when notify is smtp")
	}

	cfg.SMTPTo = nil
	for part := range strings.SplitSeq(input.SMTPTo, ",") {
		addr := strings.TrimSpace(part)
		if addr != "" {
			cfg.SMTPTo = append(cfg.SMTPTo, addr)
		}
	}
	if len(cfg.SMTPTo) == 0 {
		return fmt.Errorf("smtp-to must list at least one recipient when notify is smtp")
	}
	return nil
}

// processCapturePatterns parses "folder:pattern" pairs into the capture map.
// Empty input is fine; capture then records every folder with a catch-all.
func processCapturePatterns(cfg *Config, input *ConfigRawInput) error {
	cfg.CapturePatterns = make(map[string][]string)
	if input.CapturePatterns == "" {
		return nil
	}

	for part := range strings.SplitSeq(input.CapturePatterns, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyValue := strings.SplitN(part, ":", 2)
		if len(keyValue) != 2 || strings.TrimSpace(keyValue[0]) == "" || strings.TrimSpace(keyValue[1]) == "" {
			return fmt.Errorf("invalid capture pattern '%s', expected 'folder:pattern'", part)
		}
		folder := strings.TrimSpace(keyValue[0])
		pattern := strings.TrimSpace(keyValue[1])
		cfg.CapturePatterns[folder] = append(cfg.CapturePatterns[folder], pattern)
	}
	return nil
}
