// Package journal keeps a history of position calculations and the rate
// tables they were made with.
package journal

import (
	"time"

	"github.com/rustyeddy/poscalc/market"
	"github.com/rustyeddy/poscalc/pkg/id"
	"github.com/rustyeddy/poscalc/risk"
)

// Record is one completed calculation.
type Record struct {
	ID              string
	Time            time.Time
	AccountCurrency string
	Instrument      string
	Balance         float64
	RiskPercent     float64
	StopLossPips    float64
	Mode            string
	TargetPips      float64
	Side            string
	QuoteRate       float64
	Units           float64
	Lots            float64
	RiskAmount      float64
	PipValue        float64
	Margin          float64
	Profit          float64
	Commission      float64
}

// NewRecord captures in and res at now.
func NewRecord(in risk.Inputs, res risk.Result, now time.Time) Record {
	now = now.UTC()
	return Record{
		ID:              id.At(now),
		Time:            now,
		AccountCurrency: res.AccountCurrency,
		Instrument:      res.Pair.String(),
		Balance:         in.Balance,
		RiskPercent:     in.RiskPercent,
		StopLossPips:    in.StopLossPips,
		Mode:            in.Target.Mode.String(),
		TargetPips:      res.TargetPips,
		Side:            res.Side.String(),
		QuoteRate:       res.QuoteRate,
		Units:           res.Units,
		Lots:            res.Lots,
		RiskAmount:      res.RiskAmount,
		PipValue:        res.PipValue,
		Margin:          res.Margin,
		Profit:          res.Profit,
		Commission:      res.Commission,
	}
}

// RateSnapshot is a rate table as it was received.
type RateSnapshot struct {
	ID    string
	Time  time.Time
	Base  string
	Rates map[string]float64
}

// NewRateSnapshot copies r at now.
func NewRateSnapshot(r market.Rates, now time.Time) RateSnapshot {
	now = now.UTC()
	return RateSnapshot{
		ID:    id.At(now),
		Time:  now,
		Base:  r.Base,
		Rates: r.Clone().Values,
	}
}

// Journal stores calculations and rate snapshots.
type Journal interface {
	RecordCalculation(Record) error
	RecordRates(RateSnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordCalculation(Record) error { return nil }
func (Nop) RecordRates(RateSnapshot) error { return nil }
func (Nop) Close() error                   { return nil }
