package market

import "strings"

// Priorities ranks currencies for quoting convention. The currency with the
// higher priority is quoted first in a market pair (EUR before USD, USD
// before JPY). The zero value has no entries and ranks every code as 0.
//
// A Priorities value is immutable once built; share it freely.
type Priorities struct {
	m map[string]int
}

// NewPriorities copies ranks into a new table.
func NewPriorities(ranks map[string]int) Priorities {
	m := make(map[string]int, len(ranks))
	for k, v := range ranks {
		m[strings.ToUpper(k)] = v
	}
	return Priorities{m: m}
}

// DefaultPriorities returns the standard interbank ordering.
func DefaultPriorities() Priorities {
	return NewPriorities(map[string]int{
		"EUR": 1000,
		"GBP": 900,
		"AUD": 800,
		"NZD": 700,
		"USD": 600,
		"CAD": 500,
		"CNH": 470,
		"CHF": 460,
		"SGD": 450,
		"DKK": 440,
		"PLN": 430,
		"CZK": 420,
		"HKD": 410,
		"HUF": 400,
		"LVL": 390,
		"NOK": 380,
		"ZAR": 360,
		"SEK": 350,
		"HRK": 340,
		"LTL": 330,
		"MXN": 320,
		"RUB": 310,
		"JPY": 300,
	})
}

// Of returns the priority of code, 0 when unknown.
func (p Priorities) Of(code string) int {
	return p.m[strings.ToUpper(code)]
}

// Len is the number of ranked currencies.
func (p Priorities) Len() int {
	return len(p.m)
}

// AccountFirst reports whether the account currency is the first (base)
// side of the market quote between account and other. An unknown other
// currency puts the account first; equal ranks put other first.
func (p Priorities) AccountFirst(account, other string) bool {
	return p.Of(account) > p.Of(other) || p.Of(other) == 0
}
