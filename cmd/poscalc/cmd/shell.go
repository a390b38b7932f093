package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/fixer"
	"github.com/rustyeddy/poscalc/form"
	"github.com/rustyeddy/poscalc/settings"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit the form interactively",
	Long: `Start an interactive session. Every edit recalculates and saves the
form. Rate fetches run in the background; a newer fetch replaces an older
one and late answers are dropped.

Commands:
  <field> <value>     set a field (set <field> <value> also works)
  show                print the form and the last result
  rates               print the cached rates
  refresh             fetch rates for the account currency
  reset               restore the default form
  help                list commands
  quit                leave`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `fields: %s
commands: show, rates, refresh, reset, help, quit
`

// shell is the interactive loop. Input lines and fetch results are
// handled on one goroutine.
type shell struct {
	s       *form.Session
	out     io.Writer
	cmd     *cobra.Command
	pending <-chan fixer.Result
}

func runShell(cmd *cobra.Command, args []string) error {
	s, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	sh := &shell{s: s, out: cmd.OutOrStdout(), cmd: cmd}
	lines := make(chan string)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-quit:
				return
			}
		}
	}()

	if out, err := s.Preview(); err == nil && out.Computed {
		printOutcome(sh.out, out)
	}
	sh.prompt()

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(sh.out)
				return nil
			}
			if quit := sh.handle(line); quit {
				return nil
			}
			sh.prompt()
		case r, ok := <-sh.pending:
			sh.pending = nil
			if !ok {
				continue
			}
			sh.apply(r)
			sh.prompt()
		}
	}
}

func (sh *shell) prompt() {
	fmt.Fprint(sh.out, "poscalc> ")
}

func (sh *shell) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch verb := strings.ToLower(fields[0]); verb {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintf(sh.out, shellHelp, strings.Join(settings.Fields(), ", "))
	case "show":
		f, _ := sh.s.Snapshot()
		printForm(sh.out, f)
		printOutcome(sh.out, sh.s.Last())
	case "rates":
		_, rates := sh.s.Snapshot()
		printRates(sh.out, rates)
	case "refresh":
		sh.refresh()
	case "reset":
		out, err := sh.s.Reset()
		sh.report(out, err)
	case "set":
		if len(fields) < 2 {
			fmt.Fprintln(sh.out, "usage: set <field> <value>")
			return false
		}
		sh.set(fields[1], strings.Join(fields[2:], " "))
	default:
		sh.set(fields[0], strings.Join(fields[1:], " "))
	}
	return false
}

func (sh *shell) set(field, value string) {
	out, err := sh.s.Set(field, value)
	sh.report(out, err)
	if out.NeedsRefresh {
		sh.refresh()
	}
}

func (sh *shell) refresh() {
	ch, err := sh.s.Refresh(sh.cmd.Context())
	if err != nil {
		fmt.Fprintf(sh.out, "! %v\n", err)
		return
	}
	sh.pending = ch
	fmt.Fprintln(sh.out, "fetching rates...")
}

func (sh *shell) apply(r fixer.Result) {
	out, err := sh.s.Apply(r)
	if errors.Is(err, form.ErrStale) {
		return
	}
	if err != nil {
		fmt.Fprintf(sh.out, "! %v\n", err)
		return
	}
	_, rates := sh.s.Snapshot()
	fmt.Fprintf(sh.out, "rates updated: %d currencies against %s\n", rates.Len(), rates.Base)
	printOutcome(sh.out, out)
}

func (sh *shell) report(out form.Outcome, err error) {
	if err != nil {
		fmt.Fprintf(sh.out, "! %v\n", err)
		return
	}
	printOutcome(sh.out, out)
}
