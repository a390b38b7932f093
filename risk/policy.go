package risk

// Policy holds the trader's own limits. A zero field disables its check.
type Policy struct {
	MaxRiskPct   float64 // 2 = 2% of balance
	MinRR        float64 // 1.5
	MaxMarginPct float64 // margin as % of balance, e.g. 20
}

// Enabled reports whether any limit is set.
func (p Policy) Enabled() bool {
	return p.MaxRiskPct > 0 || p.MinRR > 0 || p.MaxMarginPct > 0
}
