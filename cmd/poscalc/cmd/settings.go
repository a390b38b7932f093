package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or reset the settings file",
	Long: `The settings file holds the form text and the cached rates. It is
rewritten after every calculation.

Subcommands:
  path  - Print the settings file path
  show  - Print the saved form
  reset - Restore the default form and clear the cached rates`,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), settingsPath)
		return nil
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved form",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default form",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	form, rates := s.Snapshot()
	printForm(cmd.OutOrStdout(), form)
	printRates(cmd.OutOrStdout(), rates)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if _, err := s.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Settings reset: %s\n", s.Path())
	return nil
}
