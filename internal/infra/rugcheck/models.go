package rugcheck

import "github.com/arskydev/dexwatch/internal/domain"

type reportPayload struct {
	Risks     risksPayload     `json:"risks"`
	Liquidity liquidityPayload `json:"liquidity"`
	Ownership ownershipPayload `json:"ownership"`
}

type risksPayload struct {
	Tax       taxPayload `json:"tax"`
	Honeypot  bool       `json:"honeypot"`
	Blacklist bool       `json:"blacklist"`
}

type taxPayload struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

type liquidityPayload struct {
	Locked bool `json:"locked"`
}

type ownershipPayload struct {
	Renounced bool `json:"renounced"`
}

func (p reportPayload) toReport() *domain.RiskReport {
	report := &domain.RiskReport{
		Honeypot:        p.Risks.Honeypot,
		Blacklisted:     p.Risks.Blacklist,
		BuyTaxPct:       p.Risks.Tax.Buy,
		SellTaxPct:      p.Risks.Tax.Sell,
		LiquidityLocked: p.Liquidity.Locked,
		OwnerRenounced:  p.Ownership.Renounced,
	}
	report.Score = externalScore(report)
	return report
}

// externalScore is a weighted sum of the report's negative signals, capped
// at 100.
func externalScore(r *domain.RiskReport) float64 {
	score := 0.0
	if r.Honeypot {
		score += 50
	}
	if r.Blacklisted {
		score += 40
	}
	tax := r.TaxPct() * 2
	if tax > 30 {
		tax = 30
	}
	score += tax
	if !r.LiquidityLocked {
		score += 20
	}
	if !r.OwnerRenounced {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}
