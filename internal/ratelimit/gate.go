package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	CallsPerWindow int
	Window         time.Duration
	BurstLimit     int
	BurstWindow    time.Duration
}

// Gate bounds the call rate to an external collaborator per resource key. It
// keeps a time-ordered queue of past call timestamps per key plus a shorter
// burst sub-window; both must have headroom before a call proceeds.
type Gate struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	calls map[string][]time.Time
	burst map[string][]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, logger *zap.Logger) *Gate {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = 10 * time.Second
	}
	return &Gate{
		cfg:    cfg,
		logger: logger,
		calls:  make(map[string][]time.Time),
		burst:  make(map[string][]time.Time),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Acquire blocks until a call for key is permitted under both the main and
// the burst window, then records the call. Pure backpressure, no failure
// mode besides context cancellation.
func (g *Gate) Acquire(ctx context.Context, key string) error {
	for {
		wait := g.nextWait(key)
		if wait <= 0 {
			return nil
		}
		g.logger.Debug("rate gate waiting",
			zap.String("key", key),
			zap.Duration("wait", wait),
		)
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// nextWait returns 0 and records the call if it is permitted now, otherwise
// the duration to wait before re-checking.
func (g *Gate) nextWait(key string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.calls[key] = evictOlder(g.calls[key], now.Add(-g.cfg.Window))
	g.burst[key] = evictOlder(g.burst[key], now.Add(-g.cfg.BurstWindow))

	if g.cfg.BurstLimit > 0 && len(g.burst[key]) >= g.cfg.BurstLimit {
		oldest := g.burst[key][0]
		return g.cfg.BurstWindow - now.Sub(oldest)
	}
	if g.cfg.CallsPerWindow > 0 && len(g.calls[key]) >= g.cfg.CallsPerWindow {
		oldest := g.calls[key][0]
		return g.cfg.Window - now.Sub(oldest)
	}

	g.calls[key] = append(g.calls[key], now)
	g.burst[key] = append(g.burst[key], now)
	return 0
}

type Stats struct {
	Key            string
	CallsInWindow  int
	CallsPerWindow int
	CallsInBurst   int
	BurstLimit     int
}

func (g *Gate) Stats(key string) Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.calls[key] = evictOlder(g.calls[key], now.Add(-g.cfg.Window))
	g.burst[key] = evictOlder(g.burst[key], now.Add(-g.cfg.BurstWindow))

	return Stats{
		Key:            key,
		CallsInWindow:  len(g.calls[key]),
		CallsPerWindow: g.cfg.CallsPerWindow,
		CallsInBurst:   len(g.burst[key]),
		BurstLimit:     g.cfg.BurstLimit,
	}
}

func evictOlder(queue []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(queue) && !queue[idx].After(cutoff) {
		idx++
	}
	return queue[idx:]
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
