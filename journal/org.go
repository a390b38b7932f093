package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatCalculationOrg renders a Record as an Org-mode entry. The figures go
// in a PROPERTIES drawer; a Notes heading is left for the trader.
func FormatCalculationOrg(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Calc: %s %s (%s)\n", r.Instrument, r.AccountCurrency, shortID(r.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", r.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", r.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":ACCOUNT_CURRENCY: %s\n", r.AccountCurrency)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", r.Instrument)
	fmt.Fprintf(&b, ":BALANCE: %.2f\n", r.Balance)
	fmt.Fprintf(&b, ":RISK_PERCENT: %g\n", r.RiskPercent)
	fmt.Fprintf(&b, ":STOP_LOSS_PIPS: %g\n", r.StopLossPips)
	fmt.Fprintf(&b, ":MODE: %s\n", r.Mode)
	if r.TargetPips > 0 {
		fmt.Fprintf(&b, ":TARGET_PIPS: %g\n", r.TargetPips)
	}
	fmt.Fprintf(&b, ":SIDE: %s\n", r.Side)
	fmt.Fprintf(&b, ":QUOTE_RATE: %.5f\n", r.QuoteRate)
	fmt.Fprintf(&b, ":UNITS: %.0f\n", r.Units)
	fmt.Fprintf(&b, ":LOTS: %.2f\n", r.Lots)
	fmt.Fprintf(&b, ":RISK_AMOUNT: %.2f\n", r.RiskAmount)
	fmt.Fprintf(&b, ":PIP_VALUE: %.2f\n", r.PipValue)
	if r.Margin > 0 {
		fmt.Fprintf(&b, ":MARGIN: %.2f\n", r.Margin)
	}
	if r.Profit > 0 {
		fmt.Fprintf(&b, ":PROFIT: %.2f\n", r.Profit)
	}
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", r.Commission)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n")

	return b.String()
}

// FormatCalculationsOrg renders records separated by blank lines.
func FormatCalculationsOrg(recs []Record) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatCalculationOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
