package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/views"
)

var summaryDate string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a shareable report of a day",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDate, "date", "today", `Day as YYYY-MM-DD, "today" or "yesterday"`)
}

func runSummary(cmd *cobra.Command, args []string) error {
	store := current.store
	date, _, err := parseDate(summaryDate, nowFunc())
	if err != nil {
		return err
	}
	ws, ok := store.WorkSessionForDate(date)
	if !ok {
		return userErrorf("no work session on %s", date)
	}
	fmt.Fprintln(cmd.OutOrStdout(), views.DaySummary(ws, store.Jobs()))
	return nil
}
