package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/views"
)

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Clock in and start today's work session",
	Args:  cobra.NoArgs,
	RunE:  runIn,
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Clock out of today's work session",
	Args:  cobra.NoArgs,
	RunE:  runOut,
}

func runIn(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store := current.store

	if prev, ok := store.CurrentWorkSession(); ok {
		// Clocking in again replaces the session.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: replacing today's session (clocked in at %s)\n", clock(prev.ClockIn))
	}
	ws := store.ClockIn()
	fmt.Fprintf(out, "Clocked in at %s\n", clock(ws.ClockIn))
	return nil
}

func runOut(cmd *cobra.Command, args []string) error {
	store := current.store
	if !store.ClockOut() {
		return userErrorf("not clocked in today")
	}
	ws, _ := store.CurrentWorkSession()
	fmt.Fprintf(cmd.OutOrStdout(), "Clocked out at %s. Worked: %s\n",
		clock(*ws.ClockOut), views.DurationText(ws.ClockIn, *ws.ClockOut))
	if active := store.ActiveJobs(); len(active) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: %d job(s) still running; end them with: wdt end --all\n", len(active))
	}
	return nil
}
