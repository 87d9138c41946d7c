package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var startDesc string

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a new job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startDesc, "desc", "d", "", "Job description")
}

func runStart(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return userErrorf("job name must not be empty")
	}
	store := current.store

	if _, ok := store.CurrentWorkSession(); !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: not clocked in today")
	}
	job := store.AddJob(name, strings.TrimSpace(startDesc))
	fmt.Fprintf(cmd.OutOrStdout(), "Started job %q (%s) at %s\n", job.Name, shortID(job.ID), clock(job.StartTime))
	return nil
}
