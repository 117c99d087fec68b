package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeAdmitted         Outcome = "admitted"
	OutcomeRejectedCooldown Outcome = "rejected_cooldown"
	OutcomeRejectedTooYoung Outcome = "rejected_too_young"
	OutcomeRejectedRugRisk  Outcome = "rejected_rug_risk"
	OutcomeRejectedSafety   Outcome = "rejected_safety"
	OutcomeRejectedVolume   Outcome = "rejected_fake_volume"
	OutcomeDeferredSafety   Outcome = "deferred_safety"
	OutcomeDeferredVolume   Outcome = "deferred_fake_volume"
)

func (o Outcome) Rejected() bool {
	switch o {
	case OutcomeRejectedCooldown, OutcomeRejectedTooYoung, OutcomeRejectedRugRisk, OutcomeRejectedSafety, OutcomeRejectedVolume:
		return true
	}
	return false
}

func (o Outcome) Deferred() bool {
	return o == OutcomeDeferredSafety || o == OutcomeDeferredVolume
}

// ScanRecord is one audited admission decision. Every candidate that reaches
// the pipeline produces exactly one record per tick, whatever the outcome.
type ScanRecord struct {
	ID           uint
	TickID       string
	Timestamp    time.Time
	Chain        string
	Address      string
	Name         string
	Symbol       string
	PriceUSD     decimal.Decimal
	Volume24hUSD decimal.Decimal
	LiquidityUSD decimal.Decimal
	MarketCapUSD decimal.Decimal
	Outcome      Outcome
	Reason       string
	RiskScore    float64
	TaxPct       float64
	Honeypot     bool
}

// AlertRecord is one successfully delivered notification.
type AlertRecord struct {
	ID           uint
	Timestamp    time.Time
	Chain        string
	Address      string
	Name         string
	Symbol       string
	PriceUSD     decimal.Decimal
	Volume24hUSD decimal.Decimal
	LiquidityUSD decimal.Decimal
	MarketCapUSD decimal.Decimal
	RiskScore    float64
	TaxPct       float64
}

type ScanStats struct {
	TotalScanned  int64
	Admitted      int64
	RugRisks      int64
	FakeVolume    int64
	Deferred      int64
	ChainsScanned int64
}

type AlertSummary struct {
	TotalAlerts  int64
	ChainsActive int64
	AvgRiskScore float64
	FirstAlert   *time.Time
	LastAlert    *time.Time
}

type TopRiskToken struct {
	Name      string
	Symbol    string
	Chain     string
	RiskScore float64
	Timestamp time.Time
}
