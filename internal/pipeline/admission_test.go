package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/cooldown"
	"github.com/arskydev/dexwatch/internal/domain"
	"github.com/arskydev/dexwatch/internal/risk"
	"github.com/arskydev/dexwatch/internal/volume"
)

type fakeReports struct {
	report *domain.RiskReport
	err    error
}

func (f *fakeReports) FetchReport(context.Context, string, string) (*domain.RiskReport, error) {
	return f.report, f.err
}

type fakeMarket struct {
	detail *domain.TokenCandidate
}

func (f *fakeMarket) FetchCandidates(context.Context, string) ([]domain.TokenCandidate, error) {
	return nil, nil
}

func (f *fakeMarket) FetchDetail(context.Context, string, string) (*domain.TokenCandidate, error) {
	return f.detail, nil
}

type memoryAudit struct {
	scans  []domain.ScanRecord
	alerts []domain.AlertRecord
}

func (m *memoryAudit) AppendScanRecord(_ context.Context, record *domain.ScanRecord) error {
	m.scans = append(m.scans, *record)
	return nil
}

func (m *memoryAudit) AppendAlertRecord(_ context.Context, record *domain.AlertRecord) error {
	m.alerts = append(m.alerts, *record)
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func goodCandidate() domain.TokenCandidate {
	created := testNow.Add(-48 * time.Hour)
	return domain.TokenCandidate{
		Chain:        "solana",
		Address:      "So1abc",
		Name:         "Good Token",
		Symbol:       "GOOD",
		PriceUSD:     decimal.NewFromFloat(0.0001),
		Volume1hUSD:  decimal.NewFromInt(3_000),
		Volume6hUSD:  decimal.NewFromInt(14_000),
		Volume24hUSD: decimal.NewFromInt(50_000),
		LiquidityUSD: decimal.NewFromInt(25_000),
		MarketCapUSD: decimal.NewFromInt(1_000_000),
		CreatedAt:    &created,
		Txns: domain.TxnActivity{
			H1:  domain.TxnCounts{Buys: 40, Sells: 25},
			H24: domain.TxnCounts{Buys: 300, Sells: 150},
		},
	}
}

type pipelineFixture struct {
	pipeline *Pipeline
	tracker  *cooldown.Tracker
	backlog  *Backlog
	audit    *memoryAudit
	reports  *fakeReports
}

func newFixture(t *testing.T, cfg Config) *pipelineFixture {
	t.Helper()

	tracker := cooldown.NewTracker(10 * time.Minute)
	backlog := NewBacklog(50, time.Hour)
	audit := &memoryAudit{}

	// Clean external report, healthy detail: risk contributes nothing
	// unless a test overrides the report.
	reports := &fakeReports{report: &domain.RiskReport{LiquidityLocked: true, OwnerRenounced: true}}
	detail := goodCandidate()
	holders := 5000
	detail.HolderCount = &holders
	market := &fakeMarket{detail: &detail}

	riskCfg := risk.DefaultConfig()
	riskCfg.MinLiquidityUSD = 1000
	evaluator := risk.NewEvaluator(riskCfg, reports, market, zap.NewNop())

	filter := volume.NewFilter(volume.DefaultConfig(), zap.NewNop())

	p := New(cfg, tracker, evaluator, filter, backlog, audit, zap.NewNop())
	p.now = func() time.Time { return testNow }

	return &pipelineFixture{pipeline: p, tracker: tracker, backlog: backlog, audit: audit, reports: reports}
}

func defaultPipelineConfig() Config {
	return Config{
		MinTokenAge:     time.Minute,
		MinLiquidityUSD: 1000,
		MinMarketCapUSD: 10_000,
		MinVolume24hUSD: 50,
		MinUniqueBuys1h: 1,
		BuySellRatioMax: 20,
	}
}

func TestHealthyCandidateIsAdmitted(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	decision := f.pipeline.Process(context.Background(), "tick-1", goodCandidate())

	assert.Equal(t, domain.OutcomeAdmitted, decision.Outcome)
	assert.Equal(t, 0, f.backlog.Len())
	require.Len(t, f.audit.scans, 1)
	assert.Equal(t, domain.OutcomeAdmitted, f.audit.scans[0].Outcome)
	assert.Equal(t, "tick-1", f.audit.scans[0].TickID)
}

func TestCooldownDuplicateIsRejected(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())
	f.tracker.MarkSent("solana", "So1abc", "Good Token")

	decision := f.pipeline.Process(context.Background(), "tick-1", goodCandidate())

	assert.Equal(t, domain.OutcomeRejectedCooldown, decision.Outcome)
}

func TestTooYoungIsRejected(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	c := goodCandidate()
	created := testNow.Add(-30 * time.Second)
	c.CreatedAt = &created

	decision := f.pipeline.Process(context.Background(), "tick-1", c)
	assert.Equal(t, domain.OutcomeRejectedTooYoung, decision.Outcome)
}

func TestUnknownAgePasses(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	c := goodCandidate()
	c.CreatedAt = nil

	decision := f.pipeline.Process(context.Background(), "tick-1", c)
	assert.Equal(t, domain.OutcomeAdmitted, decision.Outcome)
}

func TestHoneypotIsRejectedAsRugRisk(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())
	f.reports.report = &domain.RiskReport{Honeypot: true, LiquidityLocked: true, OwnerRenounced: true}

	decision := f.pipeline.Process(context.Background(), "tick-1", goodCandidate())

	assert.Equal(t, domain.OutcomeRejectedRugRisk, decision.Outcome)
	assert.True(t, decision.Verdict.RugRisk)
	require.Len(t, f.audit.scans, 1)
	assert.True(t, f.audit.scans[0].Honeypot)
}

func TestLowLiquidityDefersToBacklogWithLowPriority(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	c := goodCandidate()
	c.LiquidityUSD = decimal.NewFromInt(500)

	decision := f.pipeline.Process(context.Background(), "tick-1", c)

	assert.Equal(t, domain.OutcomeDeferredSafety, decision.Outcome)
	assert.Equal(t, PriorityLow, decision.Priority)
	require.Equal(t, 1, f.backlog.Len())

	queued, ok := f.backlog.Pop()
	require.True(t, ok)
	assert.Equal(t, "So1abc", queued.Candidate.Address)
	assert.Equal(t, PriorityLow, queued.Priority)
}

func TestLowLiquidityNeverAdmits(t *testing.T) {
	for _, hard := range []bool{false, true} {
		cfg := defaultPipelineConfig()
		cfg.LiquidityHardFail = hard
		f := newFixture(t, cfg)

		c := goodCandidate()
		c.LiquidityUSD = decimal.NewFromInt(500)

		decision := f.pipeline.Process(context.Background(), "tick-1", c)
		assert.NotEqual(t, domain.OutcomeAdmitted, decision.Outcome)
		if hard {
			assert.Equal(t, domain.OutcomeRejectedSafety, decision.Outcome)
		} else {
			assert.Equal(t, domain.OutcomeDeferredSafety, decision.Outcome)
		}
	}
}

func TestExtremeBuySellRatioIsHardRejected(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	c := goodCandidate()
	c.Txns.H24 = domain.TxnCounts{Buys: 100, Sells: 2}

	decision := f.pipeline.Process(context.Background(), "tick-1", c)

	assert.Equal(t, domain.OutcomeRejectedSafety, decision.Outcome)
	assert.Equal(t, "extreme buy/sell ratio", decision.Reason)
	assert.Equal(t, 0, f.backlog.Len())
}

func TestNoBuysAtAllIsHardRejected(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	c := goodCandidate()
	c.Txns.H1 = domain.TxnCounts{}
	c.Txns.H24 = domain.TxnCounts{Buys: 0, Sells: 40}

	decision := f.pipeline.Process(context.Background(), "tick-1", c)
	assert.Equal(t, domain.OutcomeRejectedSafety, decision.Outcome)
	assert.Equal(t, "no buys at all", decision.Reason)
}

func TestFakeVolumeDefersByDefault(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	c := goodCandidate()
	c.Volume24hUSD = decimal.NewFromInt(150_000)
	c.Txns.H24 = domain.TxnCounts{Buys: 500, Sells: 500}

	decision := f.pipeline.Process(context.Background(), "tick-1", c)

	assert.Equal(t, domain.OutcomeDeferredVolume, decision.Outcome)
	assert.Equal(t, 1, f.backlog.Len())
}

func TestFakeVolumeRejectToggle(t *testing.T) {
	cfg := defaultPipelineConfig()
	cfg.FakeVolumeReject = true
	f := newFixture(t, cfg)

	c := goodCandidate()
	c.Volume24hUSD = decimal.NewFromInt(150_000)
	c.Txns.H24 = domain.TxnCounts{Buys: 500, Sells: 500}

	decision := f.pipeline.Process(context.Background(), "tick-1", c)

	assert.Equal(t, domain.OutcomeRejectedVolume, decision.Outcome)
	assert.Equal(t, 0, f.backlog.Len())
}

func TestEveryDecisionIsAudited(t *testing.T) {
	f := newFixture(t, defaultPipelineConfig())

	f.pipeline.Process(context.Background(), "tick-1", goodCandidate())

	c := goodCandidate()
	c.LiquidityUSD = decimal.NewFromInt(500)
	c.Address = "So1def"
	c.Name = "Thin Token"
	f.pipeline.Process(context.Background(), "tick-1", c)

	require.Len(t, f.audit.scans, 2)
	assert.Equal(t, domain.OutcomeAdmitted, f.audit.scans[0].Outcome)
	assert.Equal(t, domain.OutcomeDeferredSafety, f.audit.scans[1].Outcome)
}
