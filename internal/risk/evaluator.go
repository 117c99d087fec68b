package risk

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arskydev/dexwatch/internal/domain"
	"go.uber.org/zap"
)

type Config struct {
	MinLiquidityUSD float64
	MaxTaxPct       float64

	// RugScoreCeiling is the local score above which a candidate is flagged
	// rug-risk from custom analysis alone, before combining with the
	// external report.
	RugScoreCeiling float64

	// Hard-fail overrides. When disabled, the corresponding report condition
	// still contributes to the score but no longer forces the rug flag.
	HoneypotHardFail bool
	OwnerHardFail    bool
	LiqLockHardFail  bool
}

func DefaultConfig() Config {
	return Config{
		MinLiquidityUSD:  100,
		MaxTaxPct:        10,
		RugScoreCeiling:  60,
		HoneypotHardFail: true,
		OwnerHardFail:    true,
		LiqLockHardFail:  true,
	}
}

// Evaluator combines the external risk report with locally computed risk
// signals into a unified verdict. The two scores are averaged, dampening a
// flag from a single source; the rug-risk flag propagates from either source
// as an OR.
type Evaluator struct {
	cfg     Config
	reports domain.RiskReportSource
	market  domain.MarketDataSource
	logger  *zap.Logger
	now     func() time.Time
}

func NewEvaluator(cfg Config, reports domain.RiskReportSource, market domain.MarketDataSource, logger *zap.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, reports: reports, market: market, logger: logger, now: time.Now}
}

func (e *Evaluator) Evaluate(ctx context.Context, address, chain string) domain.RiskVerdict {
	report, reportErr := e.reports.FetchReport(ctx, address, chain)
	if reportErr != nil {
		e.logger.Warn("risk report fetch failed",
			zap.String("chain", chain),
			zap.String("address", address),
			zap.Error(reportErr),
		)
	}

	detail, detailErr := e.market.FetchDetail(ctx, address, chain)
	if detailErr != nil {
		e.logger.Warn("token detail fetch failed",
			zap.String("chain", chain),
			zap.String("address", address),
			zap.Error(detailErr),
		)
	}

	// Fail closed when nothing could be evaluated at all.
	if reportErr != nil && detailErr != nil {
		return domain.ConservativeVerdict()
	}

	verdict := domain.RiskVerdict{LiquidityLocked: true, OwnerRenounced: true}
	externalScore := 0.0
	if report != nil {
		externalScore = e.applyReport(&verdict, *report)
	}

	customScore := e.customAnalysis(&verdict, detail)
	if customScore > e.cfg.RugScoreCeiling {
		verdict.RugRisk = true
		verdict.Factors = append(verdict.Factors, fmt.Sprintf("custom risk score %.0f above ceiling", customScore))
	}

	verdict.Score = clamp((externalScore+customScore)/2, 0, 100)
	return verdict
}

// applyReport copies report fields onto the verdict, applies the hard-fail
// conditions and returns the external score contribution.
func (e *Evaluator) applyReport(verdict *domain.RiskVerdict, report domain.RiskReport) float64 {
	verdict.Honeypot = report.Honeypot
	verdict.Blacklisted = report.Blacklisted
	verdict.TaxPct = report.TaxPct()
	verdict.LiquidityLocked = report.LiquidityLocked
	verdict.OwnerRenounced = report.OwnerRenounced

	if report.Honeypot && e.cfg.HoneypotHardFail {
		verdict.RugRisk = true
		verdict.Factors = append(verdict.Factors, "honeypot")
	}
	if report.Blacklisted {
		verdict.RugRisk = true
		verdict.Factors = append(verdict.Factors, "blacklisted")
	}
	if !report.LiquidityLocked && e.cfg.LiqLockHardFail {
		verdict.RugRisk = true
		verdict.Factors = append(verdict.Factors, "liquidity not locked")
	}
	if !report.OwnerRenounced && e.cfg.OwnerHardFail {
		verdict.RugRisk = true
		verdict.Factors = append(verdict.Factors, "owner not renounced")
	}
	if verdict.TaxPct > e.cfg.MaxTaxPct {
		verdict.RugRisk = true
		verdict.Factors = append(verdict.Factors, fmt.Sprintf("tax %.1f%% above ceiling", verdict.TaxPct))
	}

	return report.Score
}

// customAnalysis sums the local sub-scores. Each sub-score fails open to a
// zero contribution when its data is missing.
func (e *Evaluator) customAnalysis(verdict *domain.RiskVerdict, detail *domain.TokenCandidate) float64 {
	if detail == nil {
		verdict.Factors = append(verdict.Factors, "token information not available")
		return 20
	}

	score := e.liquidityScore(verdict, *detail)
	score += e.tradingScore(verdict, *detail)
	score += e.holderScore(verdict, *detail)
	score += e.ageScore(verdict, *detail)
	return score
}

func (e *Evaluator) liquidityScore(verdict *domain.RiskVerdict, c domain.TokenCandidate) float64 {
	score := 0.0
	liquidity := c.LiquidityUSD.InexactFloat64()

	if liquidity < e.cfg.MinLiquidityUSD {
		score += 30
		verdict.Factors = append(verdict.Factors, "low liquidity")
	} else if liquidity < e.cfg.MinLiquidityUSD*2 {
		score += 15
	}

	if detectLiquidityDrop(c.LiquidityHistory) {
		score += 40
		verdict.Factors = append(verdict.Factors, "liquidity drop detected")
	}
	return score
}

func (e *Evaluator) tradingScore(verdict *domain.RiskVerdict, c domain.TokenCandidate) float64 {
	score := 0.0
	marketCap := c.MarketCapUSD.InexactFloat64()
	volume := c.Volume24hUSD.InexactFloat64()

	if marketCap > 0 {
		ratio := volume / marketCap
		switch {
		case ratio > 5:
			score += 25
			verdict.Factors = append(verdict.Factors, "extreme volume to market cap ratio")
		case ratio > 2:
			score += 15
		}
		if ratio < 0.01 {
			score += 10
		}
	}

	change := c.PriceChange24hPct.InexactFloat64()
	if change > 500 || change < -500 {
		score += 20
		verdict.Factors = append(verdict.Factors, "extreme 24h price swing")
	}
	return score
}

func (e *Evaluator) holderScore(verdict *domain.RiskVerdict, c domain.TokenCandidate) float64 {
	score := 0.0

	if c.HolderCount != nil {
		switch holders := *c.HolderCount; {
		case holders < 50:
			score += 30
			verdict.Factors = append(verdict.Factors, "very few holders")
		case holders < 100:
			score += 15
		case holders < 200:
			score += 5
		}
	}

	if len(c.TopHolderPercents) > 0 {
		top5 := 0.0
		for i, pct := range c.TopHolderPercents {
			if i >= 5 {
				break
			}
			top5 += pct
		}
		if top5 > 70 {
			score += 25
			verdict.Factors = append(verdict.Factors, "top holders own most of supply")
		}
	}
	return score
}

func (e *Evaluator) ageScore(verdict *domain.RiskVerdict, c domain.TokenCandidate) float64 {
	age, ok := c.Age(e.now())
	if !ok {
		return 0
	}
	switch {
	case age < time.Hour:
		verdict.Factors = append(verdict.Factors, "very new contract")
		return 20
	case age < 24*time.Hour:
		return 10
	case age < 7*24*time.Hour:
		return 5
	}
	return 0
}

// detectLiquidityDrop reports whether any consecutive pair of time-ordered
// samples shows a drop exceeding 50%.
func detectLiquidityDrop(samples []domain.LiquiditySample) bool {
	history := make([]domain.LiquiditySample, len(samples))
	copy(history, samples)
	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})
	for i := 1; i < len(history); i++ {
		previous := history[i-1].LiquidityUSD.InexactFloat64()
		current := history[i].LiquidityUSD.InexactFloat64()
		if previous > 0 && current < previous*0.5 {
			return true
		}
	}
	return false
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
