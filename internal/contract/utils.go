package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/feedwatch/feedwatch/schema"
)

// Anomaly label constants.
const (
	ArrivalValue  = "Missing"    // No file inside the expected window
	ZeroSizeValue = "Empty"      // Zero-byte delivery
	SizeValue     = "Off-size"   // Size outside the historical band
	HealthyValue  = "On-time"    // No anomaly
)

// Color variables for console output.
var (
	ArrivalColor  = color.New(color.FgRed, color.Bold)     // arrivalColor flags a missing delivery.
	ZeroSizeColor = color.New(color.FgMagenta, color.Bold) // zeroSizeColor flags an empty file.
	SizeColor     = color.New(color.FgYellow)              // sizeColor flags an off-size delivery.
	HealthyColor  = color.New(color.FgCyan)                // healthyColor marks a clean feed.
)

// GetPlainLabel returns a plain text label for an anomaly kind. This is the
// core logic used for CSV, JSON, and table printing.
func GetPlainLabel(kind schema.AnomalyKind) string {
	switch kind {
	case schema.ArrivalAnomaly:
		return ArrivalValue
	case schema.ZeroSizeAnomaly:
		return ZeroSizeValue
	case schema.SizeRangeAnomaly:
		return SizeValue
	default:
		return HealthyValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(kind schema.AnomalyKind) string {
	text := GetPlainLabel(kind)

	switch text {
	case ArrivalValue:
		return ArrivalColor.Sprint(text)
	case ZeroSizeValue:
		return ZeroSizeColor.Sprint(text)
	case SizeValue:
		return SizeColor.Sprint(text)
	default: // "On-time"
		return HealthyColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStateDBFilePath returns the path to the SQLite DB file for alert state.
func GetStateDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".feedwatch_state.db"
	}
	return filepath.Join(homeDir, ".feedwatch_state.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseSizeBounds parses a "lower,upper" percentile pair like "10,90".
// Both values must lie in (0, 100) with lower < upper.
func ParseSizeBounds(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected 'lower,upper' percentiles, got %q", s)
	}
	lower, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lower percentile %q: %w", parts[0], err)
	}
	upper, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid upper percentile %q: %w", parts[1], err)
	}
	if lower <= 0 || upper >= 100 || lower >= upper {
		return 0, 0, fmt.Errorf("percentiles must satisfy 0 < lower < upper < 100 (received %.1f,%.1f)", lower, upper)
	}
	return lower, upper, nil
}
