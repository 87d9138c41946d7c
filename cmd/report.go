package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/timecalc"
	"github.com/Tiliavir/workday-tracker/internal/views"
)

var (
	reportFormat string
	reportDate   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show worked time per day for a week",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
	reportCmd.Flags().StringVar(&reportDate, "date", "today", "Any day of the week to report")
}

func runReport(cmd *cobra.Command, args []string) error {
	now := nowFunc()
	_, day, err := parseDate(reportDate, now)
	if err != nil {
		return err
	}
	report := views.WeekTotals(current.store.WorkSessions(), day)
	out := cmd.OutOrStdout()

	switch reportFormat {
	case "csv":
		w := csv.NewWriter(out)
		_ = w.Write([]string{"date", "duration_minutes"})
		for _, d := range report.Days {
			_ = w.Write([]string{d.Date, strconv.FormatInt(d.Minutes, 10)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "md":
		fmt.Fprintf(out, "Week %s\n", report.Week)
		fmt.Fprintln(out, "--------------------------------")
		for _, d := range report.Days {
			fmt.Fprintf(out, "%-20s%s\n", d.Date, timecalc.FormatMinutes(d.Minutes))
		}
		fmt.Fprintln(out, "--------------------------------")
		fmt.Fprintf(out, "%-20s%s\n", "Total", timecalc.FormatMinutes(report.TotalMinutes))
	default:
		return userErrorf("unknown format %q (want md, csv or json)", reportFormat)
	}
	return nil
}
