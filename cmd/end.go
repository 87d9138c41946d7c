package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/model"
)

var endAll bool

var endCmd = &cobra.Command{
	Use:   "end [id]",
	Short: "End a running job",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEnd,
}

func init() {
	endCmd.Flags().BoolVar(&endAll, "all", false, "End every running job")
}

func runEnd(cmd *cobra.Command, args []string) error {
	store := current.store
	active := store.ActiveJobs()

	var targets []model.JobEntry
	switch {
	case endAll:
		targets = active
	case len(args) == 1:
		job, err := resolveJob(active, args[0])
		if err != nil {
			return err
		}
		targets = []model.JobEntry{job}
	case len(active) == 1:
		targets = active
	case len(active) == 0:
		return userErrorf("no running job")
	default:
		return userErrorf("%d jobs are running; pass an id or --all", len(active))
	}
	if len(targets) == 0 {
		return userErrorf("no running job")
	}

	out := cmd.OutOrStdout()
	for _, j := range targets {
		if !store.EndJob(j.ID) {
			continue
		}
		ended, _ := store.Job(j.ID)
		elapsed := int64(ended.EndTime.Sub(ended.StartTime).Seconds())
		fmt.Fprintf(out, "Ended job %q (%s). Elapsed: %s\n", ended.Name, shortID(ended.ID), formatElapsed(elapsed))
	}
	return nil
}
