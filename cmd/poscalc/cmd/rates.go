package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/market"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch or show cached exchange rates",
	Long: `Manage the exchange rates cached in the settings file.

Subcommands:
  refresh - Fetch rates for the account currency and recalculate
  show    - Print the cached rates, or the last journal snapshot when
            none are cached

Examples:
  poscalc rates refresh
  POSCALC_API_KEY=... poscalc rates refresh
  poscalc rates show`,
}

var ratesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch rates for the account currency",
	Args:  cobra.NoArgs,
	RunE:  runRatesRefresh,
}

var ratesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached rates",
	Args:  cobra.NoArgs,
	RunE:  runRatesShow,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesRefreshCmd)
	ratesCmd.AddCommand(ratesShowCmd)
}

func runRatesRefresh(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout())
	defer cancel()

	out, err := s.RefreshAndWait(ctx)
	if err != nil {
		return err
	}

	_, rates := s.Snapshot()
	printRates(cmd.OutOrStdout(), rates)
	if out.Computed {
		printOutcome(cmd.OutOrStdout(), out)
	}
	return nil
}

func runRatesShow(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	_, rates := s.Snapshot()
	if rates.Len() == 0 {
		if snap, ok := journalRates(rates.Base); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Journal snapshot %s:\n", snap.Time.Local().Format("2006-01-02 15:04:05"))
			rates = market.Rates{Base: snap.Base, Values: snap.Rates}
		}
	}
	printRates(cmd.OutOrStdout(), rates)
	return nil
}

// journalRates looks up the last rates recorded for base in the SQLite
// journal, when one is configured.
func journalRates(base string) (journal.RateSnapshot, bool) {
	if cfg.Journal.Type != "sqlite" || base == "" {
		return journal.RateSnapshot{}, false
	}
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		log.Debug("journal_open_failed", zap.Error(err))
		return journal.RateSnapshot{}, false
	}
	defer j.Close()

	snap, err := j.LatestRates(base)
	if err != nil {
		if !errors.Is(err, journal.ErrNotFound) {
			log.Warn("journal_rates_failed", zap.String("base", base), zap.Error(err))
		}
		return journal.RateSnapshot{}, false
	}
	return snap, true
}
