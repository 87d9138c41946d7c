package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/tracker"
	"github.com/Tiliavir/workday-tracker/internal/views"
)

var (
	sessionIn       string
	sessionOut      string
	sessionClearOut bool
	sessionYes      bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Correct or remove work sessions",
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <date>",
	Short: "Change the clock-in or clock-out time of a day",
	Long: `Change the clock-in or clock-out time of a day, creating the session when
the day has none. <date> is YYYY-MM-DD, "today" or "yesterday"; times are
HH:MM on that day.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionEdit,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Delete a day's session and every job started that day",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	sessionCmd.AddCommand(sessionEditCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)

	f := sessionEditCmd.Flags()
	f.StringVar(&sessionIn, "in", "", "Clock-in time")
	f.StringVar(&sessionOut, "out", "", "Clock-out time")
	f.BoolVar(&sessionClearOut, "clear-out", false, "Reopen the session")
	sessionEditCmd.MarkFlagsMutuallyExclusive("out", "clear-out")

	sessionDeleteCmd.Flags().BoolVarP(&sessionYes, "yes", "y", false, "Do not ask for confirmation")
}

func runSessionEdit(cmd *cobra.Command, args []string) error {
	store := current.store
	date, day, err := parseDate(args[0], nowFunc())
	if err != nil {
		return err
	}
	flags := cmd.Flags()

	ws, exists := store.WorkSessionForDate(date)
	if !exists && !flags.Changed("in") {
		return userErrorf("no session on %s; pass --in to create one", date)
	}

	var patch tracker.SessionPatch
	in := ws.ClockIn
	if flags.Changed("in") {
		if in, err = parseEditTime(sessionIn, day); err != nil {
			return err
		}
		patch.ClockIn = &in
	}
	out := ws.ClockOut
	switch {
	case sessionClearOut:
		out = nil
		patch.ClearClockOut = true
	case flags.Changed("out"):
		t, err := parseEditTime(sessionOut, day)
		if err != nil {
			return err
		}
		out = &t
		patch.ClockOut = &t
	}
	if err := tracker.ValidateRange(in, out); err != nil {
		return userError(err)
	}

	updated := store.UpdateWorkSession(date, patch)
	msg := fmt.Sprintf("Session %s: in %s", date, clock(updated.ClockIn))
	if updated.ClockOut != nil {
		msg += fmt.Sprintf(", out %s (%s)", clock(*updated.ClockOut), views.DurationText(updated.ClockIn, *updated.ClockOut))
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	store := current.store
	now := nowFunc()
	date, _, err := parseDate(args[0], now)
	if err != nil {
		return err
	}

	_, exists := store.WorkSessionForDate(date)
	jobs := views.JobsForDate(date, store.Jobs())
	if !exists && len(jobs) == 0 {
		return userErrorf("nothing recorded on %s", date)
	}
	if !sessionYes {
		question := fmt.Sprintf("Delete %s (%s) and its %d job(s)?", views.DayLabel(date, now), date, len(jobs))
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
			return userErrorf("not deleted; pass --yes to confirm")
		}
	}

	removed := store.DeleteSession(date)
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and %d job(s)\n", date, removed)
	return nil
}
