// market/instruments.go
package market

import (
	"fmt"
	"math"
	"strings"
)

// Pair is a currency pair such as EUR/USD. Base is the currency being
// bought or sold, Quote is the currency the price is expressed in.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair accepts "EURUSD", "EUR/USD", "EUR_USD" and lower case variants.
func ParsePair(s string) (Pair, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	code = strings.NewReplacer("/", "", "_", "", "-", "", " ", "").Replace(code)
	if len(code) != 6 {
		return Pair{}, fmt.Errorf("invalid instrument %q: want 6 letters", s)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return Pair{}, fmt.Errorf("invalid instrument %q: non-letter %q", s, r)
		}
	}
	return Pair{Base: code[:3], Quote: code[3:]}, nil
}

// String returns the canonical six letter code, e.g. "EURUSD".
func (p Pair) String() string {
	return p.Base + p.Quote
}

// Name returns the broker style name, e.g. "EUR_USD".
func (p Pair) Name() string {
	return p.Base + "_" + p.Quote
}

// PipLocation is the power of ten of one pip for pairs quoted in cur.
func PipLocation(quote string) int {
	if strings.EqualFold(quote, "JPY") {
		return -2
	}
	return -4
}

// PipSize is the price increment of one pip in the quote currency:
// 0.01 for JPY quoted pairs, 0.0001 for everything else.
func PipSize(quote string) float64 {
	return math.Pow(10, float64(PipLocation(quote)))
}

// DefaultContractSize is the number of base units in one standard lot.
const DefaultContractSize = 100_000.0

// AccountCurrencies offered for account denomination.
var AccountCurrencies = []string{"AUD", "CAD", "CHF", "EUR", "GBP", "JPY", "NZD", "USD"}

// DefaultInstruments is the pair list offered to the user.
var DefaultInstruments = []string{
	"AUDCAD", "AUDCHF", "AUDJPY", "AUDNZD", "AUDUSD",
	"CADCHF", "CADJPY", "CHFJPY",
	"EURAUD", "EURCAD", "EURCHF", "EURGBP", "EURJPY", "EURNZD", "EURUSD",
	"GBPAUD", "GBPCAD", "GBPCHF", "GBPJPY", "GBPNZD", "GBPUSD",
	"NZDCAD", "NZDCHF", "NZDJPY", "NZDUSD",
	"USDCAD", "USDCHF", "USDCNH", "USDHKD", "USDJPY", "USDSGD",
}

// IsKnownInstrument reports whether code is in DefaultInstruments.
func IsKnownInstrument(code string) bool {
	p, err := ParsePair(code)
	if err != nil {
		return false
	}
	for _, in := range DefaultInstruments {
		if in == p.String() {
			return true
		}
	}
	return false
}
