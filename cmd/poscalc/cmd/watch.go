package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/form"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh rates on a schedule and recalculate",
	Long: `Fetch rates on a cron schedule and print the recalculated position
after each fetch. Stops on Ctrl-C.

The schedule comes from watch.schedule in the config unless --schedule is
given. Standard five field cron specs and descriptors such as "@every 5m"
or "@hourly" are accepted.

Examples:
  poscalc watch
  poscalc watch --schedule "@every 1m"
  poscalc watch --schedule "*/15 7-17 * * 1-5"`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchSchedule string
	watchNow      bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (default watch.schedule)")
	watchCmd.Flags().BoolVar(&watchNow, "now", true, "refresh once at startup")
}

// watcher serialises scheduled refreshes on the session.
type watcher struct {
	mu  sync.Mutex
	s   *form.Session
	cmd *cobra.Command
}

func (w *watcher) tick(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout())
	defer cancel()

	out, err := w.s.RefreshAndWait(ctx)
	stamp := time.Now().Format("2006-01-02 15:04:05")
	if err != nil {
		log.Warn("watch_refresh_failed", zap.Error(err))
		fmt.Fprintf(w.cmd.ErrOrStderr(), "%s ! %v\n", stamp, err)
		return
	}
	fmt.Fprintf(w.cmd.OutOrStdout(), "%s\n", stamp)
	printOutcome(w.cmd.OutOrStdout(), out)
}

func runWatch(cmd *cobra.Command, args []string) error {
	schedule := watchSchedule
	if schedule == "" {
		schedule = cfg.Watch.Schedule
	}
	if schedule == "" {
		return fmt.Errorf("no schedule: set watch.schedule or pass --schedule")
	}

	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watcher{s: s, cmd: cmd}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { w.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}

	log.Info("watch_started", zap.String("schedule", schedule))
	if watchNow {
		w.tick(ctx)
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("watch_stopped")
	return nil
}
