package risk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rustyeddy/poscalc/market"
)

// Form is the raw text of every user editable field.
type Form struct {
	AccountCurrency  string
	Instrument       string
	Balance          string
	RiskPercent      string
	StopLossPips     string
	TakeProfitPips   string
	TakeProfitRate   string
	Commission       string
	MarginRatio      string
	ContractSize     string
	CustomRate       string
	CustomMarginRate string
	Mode             string
}

// ParseForm turns form text into Inputs. Balance, risk and stop-loss are
// required: an empty one yields ErrIncomplete, a non-numeric one a
// *FieldError. Optional fields that fail to parse are dropped and reported
// in the returned warnings.
func ParseForm(f Form, rates market.Rates, prio market.Priorities) (Inputs, []string, error) {
	var warnings []string

	pair, err := market.ParsePair(f.Instrument)
	if err != nil {
		return Inputs{}, nil, &FieldError{Field: "instrument", Value: f.Instrument, Err: ErrInvalidPair}
	}
	currency := strings.ToUpper(strings.TrimSpace(f.AccountCurrency))
	if len(currency) != 3 {
		return Inputs{}, nil, &FieldError{Field: "currency", Value: f.AccountCurrency, Err: ErrInvalidCurrency}
	}

	balance, err := required("balance", f.Balance)
	if err != nil {
		return Inputs{}, nil, err
	}
	riskPct, err := required("risk", f.RiskPercent)
	if err != nil {
		return Inputs{}, nil, err
	}
	slPips, err := required("slpips", f.StopLossPips)
	if err != nil {
		return Inputs{}, nil, err
	}

	opt := func(name, text string) float64 {
		v, err := optional(name, text)
		if err != nil {
			warnings = append(warnings, err.Error()+", ignored")
		}
		return v
	}

	in := Inputs{
		AccountCurrency:  currency,
		Pair:             pair,
		Balance:          balance,
		RiskPercent:      riskPct,
		StopLossPips:     slPips,
		CommissionPerLot: opt("commission", f.Commission),
		MarginRatio:      opt("marginratio", f.MarginRatio),
		ContractSize:     opt("contractsize", f.ContractSize),
		Rates:            rates,
		Priorities:       prio,
		Overrides: Overrides{
			QuoteRate:  opt("customrate", f.CustomRate),
			MarginRate: opt("custommarginrate", f.CustomMarginRate),
		},
	}

	tpPips := opt("tppips", f.TakeProfitPips)
	tpRate := opt("tprate", f.TakeProfitRate)

	mode, ok := ParseMode(f.Mode)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("mode %q unknown, using normal", f.Mode))
	}
	if strings.TrimSpace(f.Mode) == "" {
		switch {
		case tpPips > 0:
			mode = ModeTargetPips
		case tpRate > 0:
			mode = ModeTargetRate
		}
	}
	switch mode {
	case ModeTargetPips:
		in.Target = TargetAtPips(tpPips)
	case ModeTargetRate:
		in.Target = TargetAtRate(tpRate)
	default:
		in.Target = NoTarget()
	}

	return in, warnings, nil
}

func parseNumber(text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

func required(name, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, &FieldError{Field: name, Err: ErrIncomplete}
	}
	v, err := parseNumber(text)
	if err != nil {
		return 0, &FieldError{Field: name, Value: text, Err: err}
	}
	return v, nil
}

func optional(name, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	v, err := parseNumber(text)
	if err != nil {
		return 0, &FieldError{Field: name, Value: text, Err: err}
	}
	return v, nil
}
