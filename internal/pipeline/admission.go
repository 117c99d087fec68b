package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/cooldown"
	"github.com/arskydev/dexwatch/internal/domain"
	"github.com/arskydev/dexwatch/internal/risk"
	"github.com/arskydev/dexwatch/internal/volume"
)

type Config struct {
	MinTokenAge     time.Duration
	MinLiquidityUSD float64
	MinMarketCapUSD float64
	MinVolume24hUSD float64
	MinUniqueBuys1h int
	BuySellRatioMax float64

	// Severity toggles: a true value turns the corresponding soft filter
	// into a hard reject.
	LiquidityHardFail bool
	MarketCapHardFail bool
	VolumeHardFail    bool
	BuyCountHardFail  bool
	FakeVolumeReject  bool
}

// Decision is the terminal outcome of one candidate's pass through the
// pipeline, recorded for audit whatever the outcome.
type Decision struct {
	Outcome  domain.Outcome
	Reason   string
	Verdict  domain.RiskVerdict
	Priority Priority
}

// Pipeline runs per-candidate admission: cooldown, age, risk, safety
// thresholds, volume authenticity. Hard failures reject; soft failures
// defer into the backlog so unused notification quota can be filled later.
type Pipeline struct {
	cfg      Config
	cooldown *cooldown.Tracker
	risk     *risk.Evaluator
	volume   *volume.Filter
	backlog  *Backlog
	audit    domain.AuditLog
	logger   *zap.Logger
	now      func() time.Time
}

func New(cfg Config, tracker *cooldown.Tracker, evaluator *risk.Evaluator, filter *volume.Filter, backlog *Backlog, audit domain.AuditLog, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		cooldown: tracker,
		risk:     evaluator,
		volume:   filter,
		backlog:  backlog,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

func (p *Pipeline) Backlog() *Backlog {
	return p.backlog
}

func (p *Pipeline) Process(ctx context.Context, tickID string, c domain.TokenCandidate) Decision {
	decision := p.decide(ctx, c)
	p.record(ctx, tickID, c, decision)

	if decision.Outcome.Deferred() {
		if p.backlog.Push(PendingAlert{Candidate: c, Verdict: decision.Verdict, Priority: decision.Priority}) {
			p.logger.Debug("backlog evicted oldest entry", zap.String("chain", c.Chain))
		}
	}
	return decision
}

func (p *Pipeline) decide(ctx context.Context, c domain.TokenCandidate) Decision {
	if !p.cooldown.IsAllowed(c.Chain, c.Address, c.DisplayName()) {
		return Decision{Outcome: domain.OutcomeRejectedCooldown, Reason: "duplicate within cooldown window"}
	}

	if age, known := c.Age(p.now()); known && age < p.cfg.MinTokenAge {
		return Decision{Outcome: domain.OutcomeRejectedTooYoung, Reason: "token too young"}
	}

	verdict := p.risk.Evaluate(ctx, c.Address, c.Chain)
	if verdict.RugRisk {
		return Decision{Outcome: domain.OutcomeRejectedRugRisk, Reason: "rug risk detected", Verdict: verdict}
	}

	if reason, hard, ok := p.safetyCheck(c); !ok {
		if hard {
			return Decision{Outcome: domain.OutcomeRejectedSafety, Reason: reason, Verdict: verdict}
		}
		return Decision{Outcome: domain.OutcomeDeferredSafety, Reason: reason, Verdict: verdict, Priority: PriorityLow}
	}

	if p.volume.LooksFake(c) {
		if p.cfg.FakeVolumeReject {
			return Decision{Outcome: domain.OutcomeRejectedVolume, Reason: "fake volume detected", Verdict: verdict}
		}
		return Decision{Outcome: domain.OutcomeDeferredVolume, Reason: "fake volume suspected", Verdict: verdict, Priority: PriorityLow}
	}

	return Decision{Outcome: domain.OutcomeAdmitted, Verdict: verdict}
}

// safetyCheck applies the configurable safety thresholds. The "no buys at
// all" block and the buy/sell ratio ceiling are always hard; the rest follow
// their severity toggles.
func (p *Pipeline) safetyCheck(c domain.TokenCandidate) (reason string, hard bool, ok bool) {
	txns := c.Txns.H24
	if txns.Total() > 0 && txns.Buys == 0 {
		return "no buys at all", true, false
	}
	if p.cfg.BuySellRatioMax > 0 && txns.Sells > 0 {
		ratio := float64(txns.Buys) / float64(txns.Sells)
		if ratio > p.cfg.BuySellRatioMax {
			return "extreme buy/sell ratio", true, false
		}
	}

	if c.LiquidityUSD.InexactFloat64() < p.cfg.MinLiquidityUSD {
		return "liquidity below minimum", p.cfg.LiquidityHardFail, false
	}
	if c.MarketCapUSD.InexactFloat64() < p.cfg.MinMarketCapUSD {
		return "market cap below minimum", p.cfg.MarketCapHardFail, false
	}
	if c.Volume24hUSD.InexactFloat64() < p.cfg.MinVolume24hUSD {
		return "24h volume below minimum", p.cfg.VolumeHardFail, false
	}
	if c.Txns.H1.Buys < p.cfg.MinUniqueBuys1h {
		return "too few buys in the last hour", p.cfg.BuyCountHardFail, false
	}
	return "", false, true
}

// record appends the decision to the audit log. Storage failures are logged
// and swallowed: auditing is best-effort and never blocks admission.
func (p *Pipeline) record(ctx context.Context, tickID string, c domain.TokenCandidate, d Decision) {
	if tickID == "" {
		tickID = uuid.NewString()
	}
	record := &domain.ScanRecord{
		TickID:       tickID,
		Timestamp:    p.now(),
		Chain:        c.Chain,
		Address:      c.Address,
		Name:         c.Name,
		Symbol:       c.Symbol,
		PriceUSD:     c.PriceUSD,
		Volume24hUSD: c.Volume24hUSD,
		LiquidityUSD: c.LiquidityUSD,
		MarketCapUSD: c.MarketCapUSD,
		Outcome:      d.Outcome,
		Reason:       d.Reason,
		RiskScore:    d.Verdict.Score,
		TaxPct:       d.Verdict.TaxPct,
		Honeypot:     d.Verdict.Honeypot,
	}
	if err := p.audit.AppendScanRecord(ctx, record); err != nil {
		p.logger.Warn("failed to append scan record",
			zap.String("chain", c.Chain),
			zap.String("address", c.Address),
			zap.Error(err),
		)
	}
}
