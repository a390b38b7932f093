package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved form and its calculation",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	w := cmd.OutOrStdout()
	form, _ := s.Snapshot()
	fmt.Fprintf(w, "Form (%s):\n", s.Path())
	printForm(w, form)
	fmt.Fprintln(w)

	out, err := s.Preview()
	if err != nil {
		fmt.Fprintf(w, "! %v\n", err)
		return nil
	}
	printOutcome(w, out)
	return nil
}
