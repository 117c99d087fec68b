package ratelimit

import (
	"context"

	"github.com/arskydev/dexwatch/internal/domain"
)

const (
	MarketKey  = "dexscreener"
	ReportsKey = "rugcheck"
)

// GatedMarketSource pushes every market API call through the shared gate so
// the whole process honors one outbound budget.
type GatedMarketSource struct {
	inner domain.MarketDataSource
	gate  *Gate
}

func NewGatedMarketSource(inner domain.MarketDataSource, gate *Gate) *GatedMarketSource {
	return &GatedMarketSource{inner: inner, gate: gate}
}

func (s *GatedMarketSource) FetchCandidates(ctx context.Context, chain string) ([]domain.TokenCandidate, error) {
	if err := s.gate.Acquire(ctx, MarketKey); err != nil {
		return nil, err
	}
	return s.inner.FetchCandidates(ctx, chain)
}

func (s *GatedMarketSource) FetchDetail(ctx context.Context, address, chain string) (*domain.TokenCandidate, error) {
	if err := s.gate.Acquire(ctx, MarketKey); err != nil {
		return nil, err
	}
	return s.inner.FetchDetail(ctx, address, chain)
}

type GatedReportSource struct {
	inner domain.RiskReportSource
	gate  *Gate
}

func NewGatedReportSource(inner domain.RiskReportSource, gate *Gate) *GatedReportSource {
	return &GatedReportSource{inner: inner, gate: gate}
}

func (s *GatedReportSource) FetchReport(ctx context.Context, address, chain string) (*domain.RiskReport, error) {
	if err := s.gate.Acquire(ctx, ReportsKey); err != nil {
		return nil, err
	}
	return s.inner.FetchReport(ctx, address, chain)
}
