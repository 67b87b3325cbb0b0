// Package cli — report.go renders batch reports as text, JSON or YAML.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// writeReport prints the outcome of a publish run.
func writeReport(w io.Writer, format model.OutputFormat, report model.BatchReport) error {
	switch format {
	case model.OutputJSON:
		return writeJSON(w, report)
	case model.OutputYAML:
		return writeYAML(w, report)
	default:
		writeReportText(w, report)
		return nil
	}
}

// writePlan prints the planned copies of a plan run.
func writePlan(w io.Writer, format model.OutputFormat, report model.BatchReport) error {
	switch format {
	case model.OutputJSON:
		return writeJSON(w, report)
	case model.OutputYAML:
		return writeYAML(w, report)
	default:
		writePlanText(w, report)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report as YAML: %w", err)
	}
	return enc.Close()
}

// writeReportText prints a one-line summary followed by the failed packages.
//
//	2 of 3 packages copied (version 2.3.1 from tag)
//	FAILED  card  unminified-copied  open .../card.js: no such file or directory
func writeReportText(w io.Writer, report model.BatchReport) {
	failed := report.Failed()
	fmt.Fprintf(w, "%d of %d packages copied (version %s from %s)\n",
		len(report.Results)-len(failed), len(report.Results), report.Version, report.VersionSource)

	for _, r := range failed {
		fmt.Fprintf(w, "FAILED  %-20s %-18s %s\n", r.Package.Name, r.FailedAt, r.Error)
	}
}

// writePlanText prints one row per package with its source and destination files.
func writePlanText(w io.Writer, report model.BatchReport) {
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No packages found.")
		return
	}

	fmt.Fprintf(w, "Version %s (from %s)\n", report.Version, report.VersionSource)
	for _, r := range report.Results {
		fmt.Fprintf(w, "%s\n", r.Package.Name)
		fmt.Fprintf(w, "  %s -> %s\n", r.Package.SourceFile(), r.Destination.File())
		fmt.Fprintf(w, "  %s -> %s\n", r.Package.SourceFileMin(), r.Destination.FileMin())
	}
}
