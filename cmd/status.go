package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/timecalc"
	"github.com/Tiliavir/workday-tracker/internal/views"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's session and running jobs",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := nowFunc()
	out := cmd.OutOrStdout()
	store := current.store

	ws, ok := store.CurrentWorkSession()
	switch {
	case !ok:
		fmt.Fprintln(out, "Not clocked in today.")
	case ws.ClockOut == nil:
		expected := current.settings.ExpectedWorkHours()
		left := views.Remaining(ws, expected, now)
		fmt.Fprintf(out, "Clocked in since %s (%s).\n", clock(ws.ClockIn), views.SessionDuration(ws, now))
		if left > 0 {
			fmt.Fprintf(out, "Remaining: %s of %gh.\n", timecalc.FormatMinutes(int64(left.Minutes())), expected)
		} else {
			fmt.Fprintf(out, "Expected %gh reached.\n", expected)
		}
	default:
		fmt.Fprintf(out, "Clocked out at %s. Worked: %s.\n", clock(*ws.ClockOut), views.SessionDuration(ws, now))
	}

	active := store.ActiveJobs()
	if len(active) == 0 {
		fmt.Fprintln(out, "No running jobs.")
		return nil
	}
	fmt.Fprintln(out, "Running:")
	for _, j := range active {
		elapsed := int64(now.Sub(j.StartTime).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		fmt.Fprintf(out, "  %s  %s", shortID(j.ID), j.Name)
		if j.Description != "" {
			fmt.Fprintf(out, " – %s", j.Description)
		}
		fmt.Fprintf(out, "  since %s  %s\n", clock(j.StartTime), timecalc.FormatDurationHHMMSS(elapsed))
	}
	return nil
}
