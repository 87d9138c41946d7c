package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions and completed jobs",
	Long:  "Delete all sessions and completed jobs. Running jobs are kept.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	store := current.store
	if !clearYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all history?") {
		return userErrorf("not cleared; pass --yes to confirm")
	}
	store.ClearHistory()
	fmt.Fprintf(cmd.OutOrStdout(), "History cleared. %d running job(s) kept.\n", len(store.ActiveJobs()))
	return nil
}
