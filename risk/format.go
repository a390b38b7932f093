package risk

import (
	"strconv"

	"github.com/govalues/decimal"
)

// Display scales for each kind of output field.
const (
	MoneyScale = 2
	RateScale  = 5
	LotScale   = 2
	UnitScale  = 0
)

// Display holds a Result formatted for the user.
type Display struct {
	Side        string
	QuoteRate   string
	PipValue    string
	RiskAmount  string
	Units       string
	Lots        string
	MarginRate  string
	Margin      string
	TargetPips  string
	Profit      string
	RR          string
	Commission  string
	NetProfit   string
	UnitPipCost string
}

// Format renders r with money to 2 places (suffixed with the account
// currency), rates to 5, lots to 2 and units as whole numbers. Fields that
// were not computed are left empty.
func Format(r Result) Display {
	money := func(v float64) string {
		return Fixed(v, MoneyScale) + " " + r.AccountCurrency
	}

	d := Display{
		Side:        r.Side.String(),
		QuoteRate:   Fixed(r.QuoteRate, RateScale),
		PipValue:    money(r.PipValue),
		RiskAmount:  money(r.RiskAmount),
		Units:       Fixed(r.Units, UnitScale),
		Lots:        Fixed(r.Lots, LotScale),
		Commission:  money(r.Commission),
		UnitPipCost: Fixed(r.UnitPipCost, 8),
	}
	if r.HasMargin {
		d.MarginRate = Fixed(r.MarginRate, RateScale)
		d.Margin = money(r.Margin)
	}
	if r.HasProfit {
		d.TargetPips = Fixed(r.TargetPips, 1)
		d.Profit = money(r.Profit)
		d.NetProfit = money(r.NetProfit)
		d.RR = Fixed(r.RR, 2)
	}
	return d
}

// Fixed rounds v half-to-even and pads it to scale decimal places.
func Fixed(v float64, scale int) string {
	d, err := decimal.NewFromFloat64(v)
	if err != nil {
		return strconv.FormatFloat(v, 'f', scale, 64)
	}
	return d.Rescale(scale).String()
}
