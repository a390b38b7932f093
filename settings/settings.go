// Package settings persists the calculator form between runs.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rustyeddy/poscalc/market"
	"github.com/rustyeddy/poscalc/risk"
)

// Settings is the text of every form field plus the last known rates.
// Numbers are kept as the user typed them.
type Settings struct {
	Balance          string             `json:"balance" yaml:"balance"`
	Risk             string             `json:"risk" yaml:"risk"`
	SLPips           string             `json:"slpips" yaml:"slpips"`
	TPPips           string             `json:"tppips" yaml:"tppips"`
	TPRate           string             `json:"tprate" yaml:"tprate"`
	Commission       string             `json:"commission" yaml:"commission"`
	MarginRatio      string             `json:"marginratio" yaml:"marginratio"`
	ContractSize     string             `json:"contractsize" yaml:"contractsize"`
	Currency         string             `json:"currency" yaml:"currency"`
	Instrument       string             `json:"instrument" yaml:"instrument"`
	CustomRate       string             `json:"customrate" yaml:"customrate"`
	CustomMarginRate string             `json:"custommarginrate" yaml:"custommarginrate"`
	Mode             string             `json:"mode" yaml:"mode"`
	Base             string             `json:"base" yaml:"base"`
	Rates            map[string]float64 `json:"rates" yaml:"rates"`
}

// Default returns an empty form denominated in EUR trading EURUSD.
func Default() *Settings {
	return &Settings{
		Currency:     "EUR",
		Instrument:   "EURUSD",
		ContractSize: "100000",
		Rates:        map[string]float64{},
	}
}

// DefaultPath is poscalc/settings.json under the user config directory,
// or ./poscalc.json when there is none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "poscalc.json"
	}
	return filepath.Join(dir, "poscalc", "settings.json")
}

func (s *Settings) textFields() map[string]*string {
	return map[string]*string{
		"balance":          &s.Balance,
		"risk":             &s.Risk,
		"slpips":           &s.SLPips,
		"tppips":           &s.TPPips,
		"tprate":           &s.TPRate,
		"commission":       &s.Commission,
		"marginratio":      &s.MarginRatio,
		"contractsize":     &s.ContractSize,
		"currency":         &s.Currency,
		"instrument":       &s.Instrument,
		"customrate":       &s.CustomRate,
		"custommarginrate": &s.CustomMarginRate,
		"mode":             &s.Mode,
	}
}

// Fields lists the editable field names in sorted order.
func Fields() []string {
	var s Settings
	out := make([]string, 0, 16)
	for k := range s.textFields() {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the text of field.
func (s *Settings) Get(field string) (string, bool) {
	p, ok := s.textFields()[strings.ToLower(field)]
	if !ok {
		return "", false
	}
	return *p, true
}

// Set replaces the text of field. Currency and instrument are upper cased.
func (s *Settings) Set(field, value string) error {
	field = strings.ToLower(strings.TrimSpace(field))
	p, ok := s.textFields()[field]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	value = strings.TrimSpace(value)
	if field == "currency" || field == "instrument" {
		value = strings.ToUpper(value)
	}
	*p = value
	return nil
}

// Form converts the settings into calculator input text.
func (s *Settings) Form() risk.Form {
	return risk.Form{
		AccountCurrency:  s.Currency,
		Instrument:       s.Instrument,
		Balance:          s.Balance,
		RiskPercent:      s.Risk,
		StopLossPips:     s.SLPips,
		TakeProfitPips:   s.TPPips,
		TakeProfitRate:   s.TPRate,
		Commission:       s.Commission,
		MarginRatio:      s.MarginRatio,
		ContractSize:     s.ContractSize,
		CustomRate:       s.CustomRate,
		CustomMarginRate: s.CustomMarginRate,
		Mode:             s.Mode,
	}
}

// MarketRates returns a copy of the stored rates.
func (s *Settings) MarketRates() market.Rates {
	r := market.NewRates(s.Base)
	for k, v := range s.Rates {
		r.Values[strings.ToUpper(k)] = v
	}
	return r
}

// SetRates stores a copy of r.
func (s *Settings) SetRates(r market.Rates) {
	s.Base = r.Base
	s.Rates = make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		s.Rates[k] = v
	}
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Rates = make(map[string]float64, len(s.Rates))
	for k, v := range s.Rates {
		out.Rates[k] = v
	}
	return &out
}
