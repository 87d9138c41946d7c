package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/model"
	"github.com/Tiliavir/workday-tracker/internal/views"
)

var (
	listMonth int
	listYear  int
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List completed jobs grouped by day",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listMonth, "month", 0, "Month 1-12 (default: current month)")
	listCmd.Flags().IntVar(&listYear, "year", 0, "Year (default: current year)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show every month")
}

func runList(cmd *cobra.Command, args []string) error {
	now := nowFunc()
	store := current.store

	jobs := store.CompletedJobs()
	if !listAll {
		month, year := now.Month(), now.Year()
		if listMonth != 0 {
			if listMonth < 1 || listMonth > 12 {
				return userErrorf("invalid month %d (want 1-12)", listMonth)
			}
			month = time.Month(listMonth)
		}
		if listYear != 0 {
			year = listYear
		}
		jobs = views.FilterByMonth(jobs, month, year)
	}

	printList(cmd.OutOrStdout(), views.GroupByCalendarDate(jobs), store.WorkSessionForDate, now)
	return nil
}

// printList prints each day's header, its session and its jobs.
func printList(out io.Writer, groups []views.DateGroup, session func(string) (model.WorkSession, bool), now time.Time) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No completed jobs found.")
		return
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%s)\n", views.DayLabel(g.Date, now), g.Date)
		if ws, ok := session(g.Date); ok {
			end := "open"
			if ws.ClockOut != nil {
				end = clock(*ws.ClockOut)
			}
			fmt.Fprintf(out, "  session %s–%s (%s)\n", clock(ws.ClockIn), end, views.SessionDuration(ws, now))
		}
		for _, j := range g.Jobs {
			fmt.Fprintf(out, "  %s–%s  %s (%s)  [%s]\n",
				clock(j.StartTime), clock(*j.EndTime), j.Name, views.JobDuration(j, now), shortID(j.ID))
			if j.Description != "" {
				fmt.Fprintf(out, "      %s\n", j.Description)
			}
		}
	}
}
