package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/feedwatch/feedwatch/core"
	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/internal/feedscan"
	"github.com/feedwatch/feedwatch/internal/metrics"
	"github.com/feedwatch/feedwatch/internal/notify"
	"github.com/feedwatch/feedwatch/internal/outwriter"
	"github.com/feedwatch/feedwatch/internal/statestore"
	"github.com/feedwatch/feedwatch/schema"
)

// checkCmd runs one detection pass over the snapshot history.
var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Evaluate today's feed arrivals against their history",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		now := time.Now()

		reader := metrics.NewReader(cfg.MetricsDir, logger)
		scanner := feedscan.NewScanner(cfg.FeedDir, logger)
		engine := core.NewEngine(cfg, reader, statestore.Get(), scanner, logger)

		findings, err := engine.Run(now)
		if err != nil {
			return err
		}

		if err := outwriter.WriteFindings(findings, cfg); err != nil {
			return fmt.Errorf("error writing findings: %w", err)
		}

		if len(findings) > 0 && cfg.Notify == schema.SMTPNotify {
			notifier := notify.NewNotifier(cfg)
			subject := fmt.Sprintf("feedwatch: %d feeds with anomalies on %s", len(findings), now.Format("2006-01-02"))
			if err := notifier.Send(subject, outwriter.RenderReport(findings)); err != nil {
				// The report already went to the configured output.
				contract.LogWarn("sending alert mail", err)
			}
		}
		return nil
	},
}
