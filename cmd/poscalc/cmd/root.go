package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/config"
	"github.com/rustyeddy/poscalc/fixer"
	"github.com/rustyeddy/poscalc/form"
	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/logging"
	"github.com/rustyeddy/poscalc/settings"
)

var rootCmd = &cobra.Command{
	Use:   "poscalc",
	Short: "Forex position size calculator",
	Long: `Poscalc sizes forex positions so that a stop-loss loses a fixed
percentage of the account.

Given the account currency, balance, risk percent, stop-loss in pips and an
instrument it reports units, lots, pip value, margin and profit/loss. Rates
are fetched from a fixer.io compatible service and cached with the form in
a settings file.

Examples:
  poscalc calc --balance 10000 --risk 1 --slpips 50 --instrument EURUSD
  poscalc set currency USD
  poscalc rates refresh
  poscalc shell`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	configPath   string
	settingsPath string
	logLevel     string
	logFile      string

	cfg      *config.Config
	log      = zap.NewNop()
	closeLog = func() error { return nil }
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "settings file (default "+settings.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "rotated JSON log file")
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if settingsPath == "" {
		settingsPath = settings.DefaultPath()
	}

	l, closeFn, err := logging.Build(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	log, closeLog = l, closeFn
	log.Debug("startup",
		zap.String("command", cmd.CommandPath()),
		zap.String("settings", settingsPath),
		zap.String("api", cfg.API.URL),
		zap.String("journal", cfg.Journal.Type),
	)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	err := closeLog()
	log, closeLog = zap.NewNop(), func() error { return nil }
	return err
}

// openJournal opens the journal named by the config.
func openJournal() (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.CalculationsFile, cfg.Journal.RatesFile)
	default:
		return journal.Nop{}, nil
	}
}

// openSession builds a Session over the settings file, the rate service
// and the journal. The returned func releases all of them.
func openSession() (*form.Session, func(), error) {
	timeout, err := cfg.API.TimeoutDuration()
	if err != nil {
		return nil, nil, fmt.Errorf("api.timeout: %w", err)
	}
	j, err := openJournal()
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	s, err := form.New(form.Options{
		SettingsPath: settingsPath,
		Source:       fixer.NewClient(cfg.API.URL, cfg.API.Key, timeout),
		Journal:      j,
		Policy:       cfg.Policy.Risk(),
		Logger:       log,
	})
	if err != nil {
		_ = j.Close()
		return nil, nil, err
	}

	done := func() {
		s.Close()
		if err := j.Close(); err != nil {
			log.Warn("journal_close_failed", zap.Error(err))
		}
	}
	return s, done, nil
}
