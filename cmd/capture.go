package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/feedwatch/feedwatch/internal/metrics"
)

// captureCmd appends one metrics snapshot pass for the live feed folders.
// Scheduled several times a day, it builds the history that check reads.
var captureCmd = &cobra.Command{
	Use:     "capture",
	Short:   "Record current feed-folder arrivals into today's snapshot",
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.FeedDir == "" {
			return fmt.Errorf("feed-dir is required for capture")
		}

		writer := metrics.NewWriter(cfg.FeedDir, cfg.MetricsDir, cfg.CapturePatterns, logger)
		rows, err := writer.Capture(time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Captured %d folder snapshots\n", rows)
		return nil
	},
}
