package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
}

var settingsHoursCmd = &cobra.Command{
	Use:   "hours [n]",
	Short: "Show or set the expected length of a working day in hours",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsHours,
}

func init() {
	settingsCmd.AddCommand(settingsHoursCmd)
}

func runSettingsHours(cmd *cobra.Command, args []string) error {
	s := current.settings
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintf(out, "Expected work hours: %g\n", s.ExpectedWorkHours())
		return nil
	}
	hours, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return userErrorf("invalid number of hours %q", args[0])
	}
	if err := s.SetExpectedWorkHours(hours); err != nil {
		return userError(err)
	}
	fmt.Fprintf(out, "Expected work hours set to %g\n", hours)
	return nil
}
