package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/form"
	"github.com/rustyeddy/poscalc/settings"
)

var setCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Change one form field and recalculate",
	Long: `Change one form field, save it and recalculate.

Fields: ` + strings.Join(settings.Fields(), ", ") + `

Changing the account currency also fetches rates for the new currency.

Examples:
  poscalc set balance 25000
  poscalc set instrument EUR/JPY
  poscalc set currency USD`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	refresh, warning, err := s.Edit(args[0], args[1])
	if err != nil {
		return err
	}
	stale := refresh && !refreshRates(cmd, s)

	out, err := s.Recalculate()
	if err != nil {
		return err
	}
	out.NeedsRefresh = stale
	if warning != "" {
		out.Warnings = append(out.Warnings, warning)
	}
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

// refreshRates fetches rates for the account currency. On failure the
// rates already held are kept and false is returned.
func refreshRates(cmd *cobra.Command, s *form.Session) bool {
	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout())
	defer cancel()

	if err := s.UpdateRates(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "! rates not refreshed: %v\n", err)
		return false
	}
	return true
}
