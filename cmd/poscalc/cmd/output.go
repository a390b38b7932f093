package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rustyeddy/poscalc/form"
	"github.com/rustyeddy/poscalc/market"
	"github.com/rustyeddy/poscalc/settings"
)

func printOutcome(w io.Writer, out form.Outcome) {
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "! %s\n", warn)
	}
	if !out.Computed {
		fmt.Fprintln(w, "Form incomplete: balance, risk and slpips are required.")
		return
	}

	d := out.Display
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "  %s\t%s\n", label, value)
		}
	}

	fmt.Fprintf(tw, "%s in %s (%s side)\n", out.Result.Pair.Name(), out.Result.AccountCurrency, d.Side)
	row("Rate", d.QuoteRate)
	row("Risk", d.RiskAmount)
	row("Pip value", d.PipValue)
	row("Pip value/unit", d.UnitPipCost)
	row("Units", d.Units)
	row("Lots", d.Lots)
	row("Margin rate", d.MarginRate)
	row("Margin", d.Margin)
	row("Target pips", d.TargetPips)
	row("Profit", d.Profit)
	row("R:R", d.RR)
	row("Commission", d.Commission)
	row("Net profit", d.NetProfit)
	_ = tw.Flush()

	for _, v := range out.Violations {
		fmt.Fprintf(w, "! %s: %s\n", v.Code, v.Msg)
	}
	if out.NeedsRefresh {
		fmt.Fprintln(w, "Account currency changed; run `poscalc rates refresh` for current rates.")
	}
}

func printForm(w io.Writer, s *settings.Settings) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range settings.Fields() {
		v, _ := s.Get(field)
		fmt.Fprintf(tw, "  %s\t%s\n", field, v)
	}
	_ = tw.Flush()
}

func printRates(w io.Writer, r market.Rates) {
	if r.Len() == 0 {
		fmt.Fprintf(w, "No rates cached for %s.\n", r.Base)
		return
	}
	fmt.Fprintf(w, "1 %s =\n", r.Base)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, code := range r.Codes() {
		fmt.Fprintf(tw, "  %s\t%s\t\n", strconv.FormatFloat(r.Values[code], 'f', -1, 64), code)
	}
	_ = tw.Flush()
}
