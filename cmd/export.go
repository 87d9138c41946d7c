package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/csvio"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all jobs and sessions as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	store := current.store
	jobs, sessions := store.Jobs(), store.WorkSessions()

	if exportOut == "" {
		if err := csvio.Export(cmd.OutOrStdout(), jobs, sessions); err != nil {
			return storageError(err)
		}
		return nil
	}
	if err := csvio.WriteFile(exportOut, csvio.ExportString(jobs, sessions)); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d job(s) and %d session(s) to %s\n", len(jobs), len(sessions), exportOut)
	return nil
}
