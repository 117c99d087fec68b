package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/cooldown"
	"github.com/arskydev/dexwatch/internal/domain"
	"github.com/arskydev/dexwatch/internal/pipeline"
	"github.com/arskydev/dexwatch/internal/ratelimit"
)

const channelKey = "notifications"

// Scheduler funnels every outbound notification through one path: final
// cooldown guard, per-minute quota, channel rate gate, delivery with retry,
// then cooldown marking and audit. Admissions that overflow the quota are
// parked in the backlog at high priority and drained next tick.
type Scheduler struct {
	cooldown *cooldown.Tracker
	gate     *ratelimit.Gate
	channel  domain.NotificationChannel
	quota    *Quota
	retry    RetryPolicy
	backlog  *pipeline.Backlog
	audit    domain.AuditLog
	logger   *zap.Logger
	now      func() time.Time
}

func NewScheduler(
	tracker *cooldown.Tracker,
	gate *ratelimit.Gate,
	channel domain.NotificationChannel,
	quota *Quota,
	retry RetryPolicy,
	backlog *pipeline.Backlog,
	audit domain.AuditLog,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cooldown: tracker,
		gate:     gate,
		channel:  channel,
		quota:    quota,
		retry:    retry,
		backlog:  backlog,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// Schedule attempts to deliver an admitted candidate now. It reports whether
// the notification was actually sent; a quota overflow is not an error, the
// candidate is parked for the next drain.
func (s *Scheduler) Schedule(ctx context.Context, c domain.TokenCandidate, verdict domain.RiskVerdict) (bool, error) {
	if !s.cooldown.IsAllowed(c.Chain, c.Address, c.DisplayName()) {
		s.logger.Debug("schedule suppressed by cooldown",
			zap.String("chain", c.Chain),
			zap.String("address", c.Address),
		)
		return false, nil
	}

	if s.quota.Headroom() == 0 {
		s.logger.Info("quota exhausted, parking admitted candidate",
			zap.String("chain", c.Chain),
			zap.String("symbol", c.Symbol),
		)
		s.backlog.Push(pipeline.PendingAlert{Candidate: c, Verdict: verdict, Priority: pipeline.PriorityHigh})
		return false, nil
	}

	return s.deliver(ctx, c, verdict)
}

// DrainBacklog runs once per scan tick: while the current minute still has
// headroom and the backlog is non-empty, promote entries through the same
// delivery path.
func (s *Scheduler) DrainBacklog(ctx context.Context) {
	for s.quota.Headroom() > 0 {
		alert, ok := s.backlog.Pop()
		if !ok {
			return
		}
		if !s.cooldown.IsAllowed(alert.Candidate.Chain, alert.Candidate.Address, alert.Candidate.DisplayName()) {
			continue
		}
		sent, err := s.deliver(ctx, alert.Candidate, alert.Verdict)
		if err != nil {
			s.logger.Warn("backlog delivery failed",
				zap.String("chain", alert.Candidate.Chain),
				zap.String("address", alert.Candidate.Address),
				zap.Error(err),
			)
			// Keep the entry for a later drain; age limits decide its fate.
			// Stopping here avoids spinning on a failing channel.
			s.backlog.Push(alert)
			return
		}
		if sent {
			s.logger.Info("backlog entry promoted",
				zap.String("chain", alert.Candidate.Chain),
				zap.String("symbol", alert.Candidate.Symbol),
				zap.String("priority", string(alert.Priority)),
			)
		}
	}
}

func (s *Scheduler) deliver(ctx context.Context, c domain.TokenCandidate, verdict domain.RiskVerdict) (bool, error) {
	if err := s.gate.Acquire(ctx, channelKey); err != nil {
		return false, err
	}

	err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.channel.Deliver(ctx, c, verdict)
	})
	if err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("chain", c.Chain),
			zap.String("address", c.Address),
			zap.Error(err),
		)
		return false, err
	}

	s.cooldown.MarkSent(c.Chain, c.Address, c.DisplayName())
	s.quota.Increment()
	s.recordAlert(ctx, c, verdict)

	s.logger.Info("alert sent",
		zap.String("chain", c.Chain),
		zap.String("symbol", c.Symbol),
		zap.Float64("risk_score", verdict.Score),
	)
	return true, nil
}

func (s *Scheduler) recordAlert(ctx context.Context, c domain.TokenCandidate, verdict domain.RiskVerdict) {
	record := &domain.AlertRecord{
		Timestamp:    s.now(),
		Chain:        c.Chain,
		Address:      c.Address,
		Name:         c.Name,
		Symbol:       c.Symbol,
		PriceUSD:     c.PriceUSD,
		Volume24hUSD: c.Volume24hUSD,
		LiquidityUSD: c.LiquidityUSD,
		MarketCapUSD: c.MarketCapUSD,
		RiskScore:    verdict.Score,
		TaxPct:       verdict.TaxPct,
	}
	if err := s.audit.AppendAlertRecord(ctx, record); err != nil {
		s.logger.Warn("failed to append alert record",
			zap.String("chain", c.Chain),
			zap.String("address", c.Address),
			zap.Error(err),
		)
	}
}
