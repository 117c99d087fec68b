package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/cooldown"
	"github.com/arskydev/dexwatch/internal/domain"
	"github.com/arskydev/dexwatch/internal/notify"
	"github.com/arskydev/dexwatch/internal/pipeline"
)

type Config struct {
	Chains          []string
	MinMarketCapUSD float64
	MaxMarketCapUSD float64
	TickDelay       time.Duration
}

// Scanner drives the scan loop: fetch candidates per chain, run each through
// the admission pipeline and hand admitted ones to the scheduler.
type Scanner struct {
	cfg       Config
	market    domain.MarketDataSource
	pipeline  *pipeline.Pipeline
	scheduler *notify.Scheduler
	cooldown  *cooldown.Tracker
	logger    *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func New(
	cfg Config,
	market domain.MarketDataSource,
	pipe *pipeline.Pipeline,
	scheduler *notify.Scheduler,
	tracker *cooldown.Tracker,
	logger *zap.Logger,
) *Scanner {
	if cfg.TickDelay <= 0 {
		cfg.TickDelay = 10 * time.Second
	}
	return &Scanner{
		cfg:       cfg,
		market:    market,
		pipeline:  pipe,
		scheduler: scheduler,
		cooldown:  tracker,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Run loops until the context is cancelled. Cancellation interrupts rate-gate
// waits and retry backoff; a send already handed to the transport still
// completes, and the loop stops at the next candidate boundary.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("scanner started",
		zap.Strings("chains", s.cfg.Chains),
		zap.Duration("tick_delay", s.cfg.TickDelay),
	)
	for {
		s.Tick(ctx)
		if err := s.sleep(ctx, s.cfg.TickDelay); err != nil {
			s.logger.Info("scanner stopped")
			return nil
		}
	}
}

// Tick runs a single scan pass. Exported so the bot's /scan command can
// trigger a pass outside the loop cadence.
func (s *Scanner) Tick(ctx context.Context) {
	tickID := uuid.NewString()
	started := time.Now()

	// Parked entries get first claim on this minute's headroom, ahead of
	// anything newly admitted in this tick.
	s.scheduler.DrainBacklog(ctx)

	candidates := s.collect(ctx)

	var processed, admitted, sent int
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		if !s.withinMarketCapBand(c) {
			continue
		}
		processed++

		decision := s.pipeline.Process(ctx, tickID, c)
		if decision.Outcome != domain.OutcomeAdmitted {
			continue
		}
		admitted++

		ok, err := s.scheduler.Schedule(ctx, c, decision.Verdict)
		if err != nil {
			s.logger.Warn("delivery failed for admitted candidate",
				zap.String("chain", c.Chain),
				zap.String("address", c.Address),
				zap.Error(err),
			)
			continue
		}
		if ok {
			sent++
		}
	}

	s.cooldown.Sweep()

	s.logger.Info("scan tick complete",
		zap.String("tick_id", tickID),
		zap.Int("fetched", len(candidates)),
		zap.Int("processed", processed),
		zap.Int("admitted", admitted),
		zap.Int("sent", sent),
		zap.Duration("took", time.Since(started)),
	)
}

// collect fans out one fetch per chain and merges the results. A chain that
// errors or panics contributes nothing and never kills the tick.
func (s *Scanner) collect(ctx context.Context) []domain.TokenCandidate {
	var (
		mu  sync.Mutex
		all []domain.TokenCandidate
		wg  sync.WaitGroup
	)
	for _, chain := range s.cfg.Chains {
		wg.Add(1)
		go func(chain string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("chain fetch panicked",
						zap.String("chain", chain),
						zap.Any("panic", r),
					)
				}
			}()

			candidates, err := s.market.FetchCandidates(ctx, chain)
			if err != nil {
				s.logger.Warn("chain fetch failed",
					zap.String("chain", chain),
					zap.Error(err),
				)
				return
			}
			mu.Lock()
			all = append(all, candidates...)
			mu.Unlock()
		}(chain)
	}
	wg.Wait()
	return all
}

func (s *Scanner) withinMarketCapBand(c domain.TokenCandidate) bool {
	if c.MarketCapUSD.IsZero() {
		return false
	}
	min := decimal.NewFromFloat(s.cfg.MinMarketCapUSD)
	max := decimal.NewFromFloat(s.cfg.MaxMarketCapUSD)
	return c.MarketCapUSD.GreaterThanOrEqual(min) && c.MarketCapUSD.LessThanOrEqual(max)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
