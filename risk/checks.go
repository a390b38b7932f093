package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a calculated position against p. It never changes the
// position; the caller decides what to do with the violations.
func Evaluate(p Policy, in Inputs, res Result) Decision {
	d := Decision{Allowed: true}

	if p.MaxRiskPct > 0 && in.RiskPercent > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("risk %.2f%% exceeds max %.2f%%", in.RiskPercent, p.MaxRiskPct))
	}

	if p.MinRR > 0 && res.HasProfit && res.RR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", res.RR, p.MinRR))
	}

	if p.MaxMarginPct > 0 && res.HasMargin && in.Balance > 0 {
		if pct := 100 * res.Margin / in.Balance; pct > p.MaxMarginPct {
			d.add("MARGIN_TOO_HIGH",
				fmt.Sprintf("margin %.2f%% of balance exceeds max %.2f%%", pct, p.MaxMarginPct))
		}
	}

	return d
}
