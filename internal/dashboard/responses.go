package dashboard

import (
	"time"

	"github.com/arskydev/dexwatch/internal/domain"
)

type statsResponse struct {
	WindowHours   float64    `json:"window_hours"`
	TotalScanned  int64      `json:"total_scanned"`
	Admitted      int64      `json:"admitted"`
	RugRisks      int64      `json:"rug_risks"`
	FakeVolume    int64      `json:"fake_volume"`
	Deferred      int64      `json:"deferred"`
	ChainsScanned int64      `json:"chains_scanned"`
	TotalAlerts   int64      `json:"total_alerts"`
	ChainsActive  int64      `json:"chains_active"`
	AvgRiskScore  float64    `json:"avg_risk_score"`
	FirstAlert    *time.Time `json:"first_alert,omitempty"`
	LastAlert     *time.Time `json:"last_alert,omitempty"`
}

type scanResponse struct {
	TickID       string    `json:"tick_id"`
	Timestamp    time.Time `json:"timestamp"`
	Chain        string    `json:"chain"`
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	PriceUSD     string    `json:"price_usd"`
	Volume24hUSD string    `json:"volume_24h_usd"`
	LiquidityUSD string    `json:"liquidity_usd"`
	MarketCapUSD string    `json:"market_cap_usd"`
	Outcome      string    `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	RiskScore    float64   `json:"risk_score"`
	Honeypot     bool      `json:"honeypot"`
}

type alertResponse struct {
	Timestamp    time.Time `json:"timestamp"`
	Chain        string    `json:"chain"`
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	PriceUSD     string    `json:"price_usd"`
	MarketCapUSD string    `json:"market_cap_usd"`
	RiskScore    float64   `json:"risk_score"`
}

type topRiskResponse struct {
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Chain     string    `json:"chain"`
	RiskScore float64   `json:"risk_score"`
	Timestamp time.Time `json:"timestamp"`
}

func mapScans(records []domain.ScanRecord) []scanResponse {
	out := make([]scanResponse, 0, len(records))
	for _, r := range records {
		out = append(out, scanResponse{
			TickID:       r.TickID,
			Timestamp:    r.Timestamp,
			Chain:        r.Chain,
			Address:      r.Address,
			Name:         r.Name,
			Symbol:       r.Symbol,
			PriceUSD:     r.PriceUSD.String(),
			Volume24hUSD: r.Volume24hUSD.String(),
			LiquidityUSD: r.LiquidityUSD.String(),
			MarketCapUSD: r.MarketCapUSD.String(),
			Outcome:      string(r.Outcome),
			Reason:       r.Reason,
			RiskScore:    r.RiskScore,
			Honeypot:     r.Honeypot,
		})
	}
	return out
}

func mapAlerts(records []domain.AlertRecord) []alertResponse {
	out := make([]alertResponse, 0, len(records))
	for _, r := range records {
		out = append(out, alertResponse{
			Timestamp:    r.Timestamp,
			Chain:        r.Chain,
			Address:      r.Address,
			Name:         r.Name,
			Symbol:       r.Symbol,
			PriceUSD:     r.PriceUSD.String(),
			MarketCapUSD: r.MarketCapUSD.String(),
			RiskScore:    r.RiskScore,
		})
	}
	return out
}

func mapTopRisks(tokens []domain.TopRiskToken) []topRiskResponse {
	out := make([]topRiskResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, topRiskResponse{
			Name:      t.Name,
			Symbol:    t.Symbol,
			Chain:     t.Chain,
			RiskScore: t.RiskScore,
			Timestamp: t.Timestamp,
		})
	}
	return out
}
