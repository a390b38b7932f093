package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/pkg/id"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the calculation journal",
	Long: `Query and display calculations recorded in the SQLite journal.

Subcommands:
  show  - Show one calculation by ID
  today - List calculations made today
  day   - List calculations made on a specific day

Output is Org-mode, ready to paste into a trading diary.

Examples:
  poscalc journal show 01HSABCDEFGHJKMNPQRSTVWXYZ
  poscalc journal today
  poscalc journal day 2024-01-15 --db ./poscalc.db`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one calculation",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List calculations made today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List calculations made on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default journal.db_path)")
}

func openJournalDB() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" && cfg.Journal.Type == "sqlite" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, errors.New("no SQLite journal: set journal.type: sqlite in the config or pass --db")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	if _, err := id.Time(args[0]); err != nil {
		return fmt.Errorf("calculation id %q: %w", args[0], err)
	}

	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetCalculation(args[0])
	if err != nil {
		return fmt.Errorf("get calculation: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatCalculationOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listJournalDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listJournalDay(cmd, args[0])
}

func listJournalDay(cmd *cobra.Command, day string) error {
	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListCalculationsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query calculations: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No calculations on %s.\n", day)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatCalculationsOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
