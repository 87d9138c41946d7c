package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/workday-tracker/internal/csvio"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import jobs and sessions from a CSV export",
	Long: `Import jobs and sessions from a CSV export. Rows whose id (jobs) or date
(sessions) already exist replace the stored record; malformed rows are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	text, err := csvio.ReadFile(args[0])
	if err != nil {
		return userError(err)
	}
	res, err := csvio.Import(cmd.Context(), strings.NewReader(text), current.store)
	if err != nil {
		return userError(fmt.Errorf("importing %s: %w", args[0], err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d job(s) and %d session(s)", res.JobsImported, res.SessionsImported)
	if res.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d row(s)", res.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
