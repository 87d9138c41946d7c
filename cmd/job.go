package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/tracker"
	"github.com/Tiliavir/workday-tracker/internal/views"
)

var (
	jobName     string
	jobDesc     string
	jobStart    string
	jobEnd      string
	jobClearEnd bool
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and correct jobs",
}

var jobEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a job's name, description or times",
	Long: `Change a job's name, description or times.

Times are given as HH:MM on the job's start day, or as "YYYY-MM-DD HH:MM".`,
	Args: cobra.ExactArgs(1),
	RunE: runJobEdit,
}

var jobShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobShow,
}

func init() {
	jobCmd.AddCommand(jobEditCmd)
	jobCmd.AddCommand(jobShowCmd)

	f := jobEditCmd.Flags()
	f.StringVar(&jobName, "name", "", "New name")
	f.StringVar(&jobDesc, "desc", "", "New description")
	f.StringVar(&jobStart, "start", "", "New start time")
	f.StringVar(&jobEnd, "end", "", "New end time")
	f.BoolVar(&jobClearEnd, "clear-end", false, "Mark the job as running again")
	jobEditCmd.MarkFlagsMutuallyExclusive("end", "clear-end")
}

func runJobEdit(cmd *cobra.Command, args []string) error {
	store := current.store
	job, err := resolveJob(store.Jobs(), args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var patch tracker.JobPatch
	if flags.Changed("name") {
		name := strings.TrimSpace(jobName)
		if name == "" {
			return userErrorf("job name must not be empty")
		}
		patch.Name = &name
	}
	if flags.Changed("desc") {
		desc := strings.TrimSpace(jobDesc)
		patch.Description = &desc
	}

	start := job.StartTime
	if flags.Changed("start") {
		if start, err = parseEditTime(jobStart, job.StartTime); err != nil {
			return err
		}
		patch.StartTime = &start
	}
	end := job.EndTime
	switch {
	case jobClearEnd:
		end = nil
		patch.ClearEndTime = true
	case flags.Changed("end"):
		t, err := parseEditTime(jobEnd, start)
		if err != nil {
			return err
		}
		end = &t
		patch.EndTime = &t
	}
	if err := tracker.ValidateRange(start, end); err != nil {
		return userError(err)
	}

	updated := store.UpdateJob(job.ID, patch)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated job %q (%s)\n", updated.Name, shortID(updated.ID))
	return nil
}

func runJobShow(cmd *cobra.Command, args []string) error {
	job, err := resolveJob(current.store.Jobs(), args[0])
	if err != nil {
		return err
	}
	now := nowFunc()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", job.ID)
	fmt.Fprintf(out, "Name:        %s\n", job.Name)
	fmt.Fprintf(out, "Description: %s\n", job.Description)
	fmt.Fprintf(out, "Start:       %s\n", job.StartTime.In(time.Local).Format("2006-01-02 15:04"))
	if job.EndTime != nil {
		fmt.Fprintf(out, "End:         %s\n", job.EndTime.In(time.Local).Format("2006-01-02 15:04"))
	} else {
		fmt.Fprintln(out, "End:         running")
	}
	fmt.Fprintf(out, "Duration:    %s\n", views.JobDuration(job, now))
	return nil
}
