package market

import (
	"fmt"
	"strings"
)

// BaseToAccountRate returns the value of one unit of the pair's base
// currency in the account currency, used for margin.
func BaseToAccountRate(pair Pair, accountCurrency string, rates Rates) (float64, error) {
	if strings.EqualFold(pair.Base, accountCurrency) {
		return 1.0, nil
	}
	v, ok := rates.Cross(pair.Base, accountCurrency)
	if !ok {
		return 0, fmt.Errorf("no rate for %s → %s", pair.Base, accountCurrency)
	}
	return v, nil
}

// PairPrice returns the market price of pair (quote per base).
func PairPrice(pair Pair, rates Rates) (float64, error) {
	v, ok := rates.Cross(pair.Base, pair.Quote)
	if !ok {
		return 0, fmt.Errorf("no price for %s", pair)
	}
	return v, nil
}
