package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/settings"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Edit form fields and calculate the position size",
	Long: `Apply any field flags to the saved form, then calculate.

Flags that are not given keep their saved value. Use --refresh to fetch
rates for the account currency first.

Examples:
  poscalc calc --balance 10000 --risk 1 --slpips 50
  poscalc calc --instrument GBPJPY --tppips 100 --marginratio 30
  poscalc calc --currency USD --refresh`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

var (
	calcFields  = map[string]*string{}
	calcRefresh bool
)

func init() {
	rootCmd.AddCommand(calcCmd)

	for _, field := range settings.Fields() {
		v := new(string)
		calcFields[field] = v
		calcCmd.Flags().StringVar(v, field, "", "set "+field)
	}
	calcCmd.Flags().BoolVarP(&calcRefresh, "refresh", "r", false, "fetch rates before calculating")
}

func runCalc(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	needsRefresh := calcRefresh
	var warnings []string
	for _, field := range settings.Fields() {
		if !cmd.Flags().Changed(field) {
			continue
		}
		refresh, warning, err := s.Edit(field, *calcFields[field])
		if err != nil {
			return err
		}
		needsRefresh = needsRefresh || refresh
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if needsRefresh {
		refreshRates(cmd, s)
	}

	out, err := s.Recalculate()
	if err != nil {
		return err
	}
	out.Warnings = append(out.Warnings, warnings...)
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

func fetchTimeout() time.Duration {
	d, err := cfg.API.TimeoutDuration()
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d + 5*time.Second
}
