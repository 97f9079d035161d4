// Package outwriter has report rendering and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// NoAnomaliesLine is the report body when every feed is healthy, so a reader
// (or a downstream mail filter) can tell a clean run from a broken one.
const NoAnomaliesLine = "No anomalies detected."

// RenderReport produces the plain-text report for a run. Findings arrive in
// deterministic feed order, so the same findings always render the same text.
func RenderReport(findings []schema.Finding) string {
	if len(findings) == 0 {
		return NoAnomaliesLine + "\n"
	}
	var b strings.Builder
	for _, finding := range findings {
		for _, anomaly := range finding.Anomalies {
			b.WriteString(renderLine(finding.Key, anomaly))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderLine formats one anomaly as a report line.
func renderLine(key schema.FeedKey, anomaly schema.Anomaly) string {
	prefix := fmt.Sprintf("Folder: %s, Pattern: %s", key.Folder, key.Pattern)
	switch anomaly.Kind {
	case schema.ZeroSizeAnomaly:
		return prefix + ", Empty file delivered (0 bytes)"
	case schema.SizeRangeAnomaly:
		return fmt.Sprintf("%s, Size %d outside expected range %.0f-%.0f",
			prefix, anomaly.ObservedSize, anomaly.Range.P10, anomaly.Range.P90)
	default: // arrival
		return fmt.Sprintf("%s, Expected Window: %s", prefix, anomaly.Window)
	}
}

// WriteFindings outputs the run findings, dispatching on the configured
// output format.
func WriteFindings(findings []schema.Finding, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONMode:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsJSON(w, findings)
		}, "Wrote JSON")
	case schema.CSVMode:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsCSV(w, findings)
		}, "Wrote CSV")
	case schema.TableMode:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsTable(w, findings, cfg)
		}, "Wrote table")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := io.WriteString(w, RenderReport(findings))
			return err
		}, "Wrote report")
	}
}

// writeFindingsTable generates and writes the human-readable table.
func writeFindingsTable(w io.Writer, findings []schema.Finding, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Folder", "Pattern", "Status", "Detail"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	patternWidth := maxPatternWidth()
	var data [][]string
	for _, finding := range findings {
		for _, anomaly := range finding.Anomalies {
			data = append(data, []string{
				finding.Key.Folder,
				truncatePattern(finding.Key.Pattern, patternWidth),
				label(anomaly.Kind),
				anomalyDetail(anomaly),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(findings) == 0 {
		if _, err := fmt.Fprintln(w, NoAnomaliesLine); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d feeds with anomalies\n", len(findings))
	return err
}

// writeFindingsCSV writes findings in CSV format, one row per anomaly.
func writeFindingsCSV(w io.Writer, findings []schema.Finding) error {
	header := []string{"folder", "pattern", "kind", "expected_window", "size_low", "size_high", "observed_size"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, finding := range findings {
			for _, anomaly := range finding.Anomalies {
				rec := []string{
					finding.Key.Folder,
					finding.Key.Pattern,
					string(anomaly.Kind),
					"", "", "", "",
				}
				switch anomaly.Kind {
				case schema.ArrivalAnomaly:
					rec[3] = anomaly.Window.String()
				case schema.SizeRangeAnomaly:
					rec[4] = fmt.Sprintf("%.0f", anomaly.Range.P10)
					rec[5] = fmt.Sprintf("%.0f", anomaly.Range.P90)
					rec[6] = fmt.Sprintf("%d", anomaly.ObservedSize)
				case schema.ZeroSizeAnomaly:
					rec[6] = "0"
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeFindingsJSON writes findings in JSON format.
func writeFindingsJSON(w io.Writer, findings []schema.Finding) error {
	type jsonAnomaly struct {
		Kind           string  `json:"kind"`
		Label          string  `json:"label"`
		ExpectedWindow string  `json:"expected_window,omitempty"`
		SizeLow        float64 `json:"size_low,omitempty"`
		SizeHigh       float64 `json:"size_high,omitempty"`
		ObservedSize   int64   `json:"observed_size,omitempty"`
	}
	type jsonFinding struct {
		Folder    string        `json:"folder"`
		Pattern   string        `json:"pattern"`
		Anomalies []jsonAnomaly `json:"anomalies"`
	}

	output := make([]jsonFinding, len(findings))
	for i, finding := range findings {
		jf := jsonFinding{Folder: finding.Key.Folder, Pattern: finding.Key.Pattern}
		for _, anomaly := range finding.Anomalies {
			ja := jsonAnomaly{
				Kind:  string(anomaly.Kind),
				Label: contract.GetPlainLabel(anomaly.Kind),
			}
			switch anomaly.Kind {
			case schema.ArrivalAnomaly:
				ja.ExpectedWindow = anomaly.Window.String()
			case schema.SizeRangeAnomaly:
				ja.SizeLow = anomaly.Range.P10
				ja.SizeHigh = anomaly.Range.P90
				ja.ObservedSize = anomaly.ObservedSize
			}
			jf.Anomalies = append(jf.Anomalies, ja)
		}
		output[i] = jf
	}
	return writeJSON(w, output)
}

// anomalyDetail is the free-text table column for one anomaly.
func anomalyDetail(anomaly schema.Anomaly) string {
	switch anomaly.Kind {
	case schema.ZeroSizeAnomaly:
		return "0 bytes"
	case schema.SizeRangeAnomaly:
		return fmt.Sprintf("%d bytes, expected %.0f-%.0f",
			anomaly.ObservedSize, anomaly.Range.P10, anomaly.Range.P90)
	default:
		return "expected " + anomaly.Window.String()
	}
}
