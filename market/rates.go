package market

import (
	"sort"
	"strings"
)

// Rates is a table of exchange rates relative to Base: Values["USD"] is the
// number of USD one unit of Base buys. Base itself is implicitly 1.
type Rates struct {
	Base   string
	Values map[string]float64
}

// NewRates returns an empty table for base.
func NewRates(base string) Rates {
	return Rates{Base: strings.ToUpper(base), Values: make(map[string]float64)}
}

// Len is the number of explicit entries.
func (r Rates) Len() int {
	return len(r.Values)
}

// Get returns the rate of code against Base.
func (r Rates) Get(code string) (float64, bool) {
	code = strings.ToUpper(code)
	if code != "" && code == r.Base {
		return 1, true
	}
	v, ok := r.Values[code]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// Cross returns how many units of to one unit of from is worth.
func (r Rates) Cross(from, to string) (float64, bool) {
	if strings.EqualFold(from, to) {
		return 1, true
	}
	f, ok := r.Get(from)
	if !ok {
		return 0, false
	}
	t, ok := r.Get(to)
	if !ok {
		return 0, false
	}
	return t / f, true
}

// Clone returns a deep copy.
func (r Rates) Clone() Rates {
	out := Rates{Base: r.Base, Values: make(map[string]float64, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// Merge folds update into r. Existing codes are updated in place and new
// codes added. An update against a different base replaces the whole table,
// since the old values are no longer comparable.
func (r *Rates) Merge(update Rates) {
	if r.Values == nil || (r.Base != "" && !strings.EqualFold(r.Base, update.Base)) {
		*r = update.Clone()
		return
	}
	if r.Base == "" {
		r.Base = strings.ToUpper(update.Base)
	}
	for k, v := range update.Values {
		r.Values[strings.ToUpper(k)] = v
	}
}

// Codes returns the explicit currency codes in sorted order.
func (r Rates) Codes() []string {
	out := make([]string, 0, len(r.Values))
	for k := range r.Values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
