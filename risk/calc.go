package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// RR is the reward to risk ratio of a take-profit distance against a
// stop-loss distance, both in pips.
func RR(stopPips, targetPips float64) float64 {
	if stopPips == 0 {
		return 0
	}
	return abs(targetPips) / abs(stopPips)
}

// RiskAmount is the money at risk for balance and a percent (1 = 1%).
func RiskAmount(balance, riskPercent float64) float64 {
	return balance * riskPercent / 100
}

// PipsBetween converts a price distance to pips.
func PipsBetween(a, b, pip float64) float64 {
	if pip == 0 {
		return 0
	}
	return abs(a-b) / pip
}

// RoundTripCommission charges perLot on open and again on close.
func RoundTripCommission(perLot, lots float64) float64 {
	return perLot * lots * 2
}

// Margin is the account currency needed to hold units at ratio:1 leverage.
// A ratio of zero means leverage is unknown and no margin is computed.
func Margin(marginRate, units, ratio float64) float64 {
	if ratio == 0 {
		return 0
	}
	return marginRate * units / ratio
}
