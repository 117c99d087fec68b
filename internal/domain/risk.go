package domain

// RiskReport is the parsed payload of the external risk-scoring API for one
// (address, chain) pair. A nil report means the report is absent, which is a
// valid outcome, not an error.
type RiskReport struct {
	Honeypot        bool
	Blacklisted     bool
	BuyTaxPct       float64
	SellTaxPct      float64
	LiquidityLocked bool
	OwnerRenounced  bool
	Score           float64
}

func (r RiskReport) TaxPct() float64 {
	if r.BuyTaxPct > r.SellTaxPct {
		return r.BuyTaxPct
	}
	return r.SellTaxPct
}

// RiskVerdict is the combined output of risk evaluation for one candidate at
// one instant. Score is always within [0,100], lower is safer.
type RiskVerdict struct {
	RugRisk         bool
	Honeypot        bool
	Blacklisted     bool
	TaxPct          float64
	LiquidityLocked bool
	OwnerRenounced  bool
	Score           float64
	Factors         []string
}

// ConservativeVerdict is the fail-closed default returned when evaluation is
// impossible: uncertainty is treated as risk.
func ConservativeVerdict() RiskVerdict {
	return RiskVerdict{
		RugRisk: true,
		Score:   100,
		Factors: []string{"analysis failed, treating as high risk"},
	}
}
