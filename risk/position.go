package risk

// EUR account, EURUSD → quote USD, EUR ranks first → pip cost = pip / EURUSD
// EUR account, EURJPY → quote JPY, pip 0.01  → pip cost = 0.01 / EURJPY
// JPY account, EURUSD → USD ranks first      → pip cost = pip * USDJPY

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/poscalc/market"
)

// Mode selects how the take-profit is expressed.
type Mode int

const (
	ModeNormal Mode = iota
	ModeTargetRate
	ModeTargetPips
)

func (m Mode) String() string {
	switch m {
	case ModeTargetRate:
		return "tprate"
	case ModeTargetPips:
		return "tppips"
	default:
		return "normal"
	}
}

// ParseMode maps a stored mode name back to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "none":
		return ModeNormal, true
	case "tprate", "rate":
		return ModeTargetRate, true
	case "tppips", "pips":
		return ModeTargetPips, true
	}
	return ModeNormal, false
}

// Target is the take-profit variant. Only the field matching Mode is read.
type Target struct {
	Mode Mode
	Pips float64
	Rate float64
}

func NoTarget() Target                 { return Target{Mode: ModeNormal} }
func TargetAtPips(pips float64) Target { return Target{Mode: ModeTargetPips, Pips: pips} }
func TargetAtRate(rate float64) Target { return Target{Mode: ModeTargetRate, Rate: rate} }

// Overrides are user supplied rates that win over the rate table.
// Zero means not set.
type Overrides struct {
	QuoteRate  float64 // market quote between account and quote currency
	MarginRate float64 // account currency per unit of base currency
}

type Inputs struct {
	AccountCurrency  string
	Pair             market.Pair
	Balance          float64
	RiskPercent      float64 // 1 = 1%
	StopLossPips     float64
	Target           Target
	EntryPrice       float64 // optional, for ModeTargetRate
	CommissionPerLot float64
	MarginRatio      float64 // n for n:1, 0 = unknown
	ContractSize     float64 // 0 = market.DefaultContractSize

	Rates      market.Rates
	Priorities market.Priorities
	Overrides  Overrides
}

// Side is the price side used to convert the quote currency.
type Side int

const (
	SideNone Side = iota // quote is the account currency
	SideAsk              // account currency quoted first
	SideBid              // quote currency quoted first
)

func (s Side) String() string {
	switch s {
	case SideAsk:
		return "ask"
	case SideBid:
		return "bid"
	default:
		return "none"
	}
}

type Result struct {
	AccountCurrency string
	Pair            market.Pair

	RiskAmount  float64
	PipSize     float64
	Side        Side
	QuoteRate   float64 // rate used for pip conversion
	UnitPipCost float64 // account currency per pip per unit
	PipValue    float64 // account currency per pip for the position
	Units       float64
	Lots        float64

	HasMargin  bool
	MarginRate float64
	Margin     float64

	HasProfit  bool
	TargetPips float64
	Profit     float64
	RR         float64

	Commission float64
	NetProfit  float64

	Warnings []string
}

func (in Inputs) validate() error {
	if in.Pair.Base == "" || in.Pair.Quote == "" {
		return ErrInvalidPair
	}
	if len(in.AccountCurrency) != 3 {
		return ErrInvalidCurrency
	}
	if !finite(in.Balance, in.RiskPercent, in.StopLossPips, in.CommissionPerLot,
		in.MarginRatio, in.ContractSize, in.EntryPrice, in.Target.Pips, in.Target.Rate,
		in.Overrides.QuoteRate, in.Overrides.MarginRate) {
		return ErrNonFinite
	}
	switch {
	case in.Balance < 0:
		return ErrInvalidBalance
	case in.RiskPercent <= 0 || in.RiskPercent > 100:
		return ErrInvalidRisk
	case in.StopLossPips <= 0:
		return ErrInvalidStopLoss
	case in.MarginRatio < 0:
		return ErrInvalidMarginRatio
	case in.ContractSize < 0:
		return ErrInvalidContractSize
	case in.CommissionPerLot < 0:
		return ErrInvalidCommission
	case in.Target.Pips < 0 || in.Target.Rate < 0:
		return ErrInvalidTarget
	case in.Overrides.QuoteRate < 0 || in.Overrides.MarginRate < 0:
		return ErrInvalidOverride
	}
	return nil
}

// Calculate sizes a position so that hitting the stop-loss loses exactly
// RiskPercent of Balance, then derives margin, profit and commission.
// It only reads Rates and Priorities.
func Calculate(in Inputs) (Result, error) {
	in.AccountCurrency = strings.ToUpper(in.AccountCurrency)
	in.Pair = market.Pair{Base: strings.ToUpper(in.Pair.Base), Quote: strings.ToUpper(in.Pair.Quote)}
	if err := in.validate(); err != nil {
		return Result{}, err
	}

	contract := in.ContractSize
	if contract == 0 {
		contract = market.DefaultContractSize
	}

	res := Result{
		AccountCurrency: in.AccountCurrency,
		Pair:            in.Pair,
		RiskAmount:      RiskAmount(in.Balance, in.RiskPercent),
		PipSize:         market.PipSize(in.Pair.Quote),
	}

	res.Side, res.QuoteRate, res.UnitPipCost = unitPipCost(in, res.PipSize, &res.Warnings)

	res.Units = res.RiskAmount / in.StopLossPips / res.UnitPipCost
	res.Lots = res.Units / contract
	res.PipValue = res.UnitPipCost * res.Units

	if in.MarginRatio > 0 {
		res.HasMargin = true
		res.MarginRate = marginRate(in, &res.Warnings)
		res.Margin = Margin(res.MarginRate, res.Units, in.MarginRatio)
	}

	if pips, ok := targetPips(in, res.PipSize, &res.Warnings); ok {
		res.HasProfit = true
		res.TargetPips = pips
		res.Profit = res.Units * pips * res.UnitPipCost
		res.RR = RR(in.StopLossPips, pips)
	}

	res.Commission = RoundTripCommission(in.CommissionPerLot, res.Lots)
	res.NetProfit = res.Profit - res.Commission

	if !finite(res.Units, res.Lots, res.PipValue, res.Margin, res.Profit, res.Commission) {
		return Result{}, ErrNonFinite
	}
	return res, nil
}

// unitPipCost converts one pip of the quote currency into the account
// currency for a single unit. The rate is the market quote between the two
// currencies, with the higher priority currency first.
func unitPipCost(in Inputs, pip float64, warnings *[]string) (Side, float64, float64) {
	account, quote := in.AccountCurrency, in.Pair.Quote
	if quote == account {
		return SideNone, 1, pip
	}

	side := SideBid
	if in.Priorities.AccountFirst(account, quote) {
		side = SideAsk
	}

	rate := in.Overrides.QuoteRate
	if rate <= 0 {
		quotePerAccount, ok := in.Rates.Cross(account, quote)
		switch {
		case !ok:
			*warnings = append(*warnings, fmt.Sprintf("no rate for %s/%s, using 1", account, quote))
			rate = 1
		case side == SideAsk:
			rate = quotePerAccount
		default:
			rate = 1 / quotePerAccount
		}
	}

	if side == SideAsk {
		return side, rate, pip / rate
	}
	return side, rate, pip * rate
}

func marginRate(in Inputs, warnings *[]string) float64 {
	if in.Overrides.MarginRate > 0 {
		return in.Overrides.MarginRate
	}
	r, err := market.BaseToAccountRate(in.Pair, in.AccountCurrency, in.Rates)
	if err != nil {
		*warnings = append(*warnings, err.Error()+", using 1")
		return 1
	}
	return r
}

func targetPips(in Inputs, pip float64, warnings *[]string) (float64, bool) {
	switch in.Target.Mode {
	case ModeTargetPips:
		if in.Target.Pips == 0 {
			return 0, false
		}
		return in.Target.Pips, true
	case ModeTargetRate:
		if in.Target.Rate == 0 {
			return 0, false
		}
		entry := in.EntryPrice
		if entry <= 0 {
			px, err := market.PairPrice(in.Pair, in.Rates)
			if err != nil {
				*warnings = append(*warnings, "no entry price for take-profit rate")
				return 0, false
			}
			entry = px
		}
		return PipsBetween(in.Target.Rate, entry, pip), true
	}
	return 0, false
}
