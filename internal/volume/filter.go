package volume

import (
	"github.com/arskydev/dexwatch/internal/domain"
	"go.uber.org/zap"
)

type Config struct {
	// RatioCeiling is the absolute volume-to-market-cap ratio above which
	// the volume is considered synthetic regardless of anything else.
	RatioCeiling float64

	// SmallCapUSD and SmallCapRatioCeiling tighten the ratio check for small
	// tokens.
	SmallCapUSD          float64
	SmallCapRatioCeiling float64

	// BaseRatioThreshold is the configured volume-to-mcap threshold; volume
	// exceeding 50x this base also triggers.
	BaseRatioThreshold float64
}

func DefaultConfig() Config {
	return Config{
		RatioCeiling:         10,
		SmallCapUSD:          100_000,
		SmallCapRatioCeiling: 5,
		BaseRatioThreshold:   0.1,
	}
}

// Filter is a stateless detector of synthetic or wash-traded volume. Four
// independent heuristics are evaluated; any one triggering is sufficient.
type Filter struct {
	cfg    Config
	logger *zap.Logger
}

func NewFilter(cfg Config, logger *zap.Logger) *Filter {
	return &Filter{cfg: cfg, logger: logger}
}

func (f *Filter) LooksFake(c domain.TokenCandidate) bool {
	volume := c.Volume24hUSD.InexactFloat64()
	marketCap := c.MarketCapUSD.InexactFloat64()
	if volume <= 0 || marketCap <= 0 {
		return false
	}

	if f.suspiciousRatio(volume, marketCap) {
		f.logFake(c, "volume ratio")
		return true
	}
	if suspiciousWindowBurst(c) {
		f.logFake(c, "window burst")
		return true
	}
	if suspiciousWashTrading(c) {
		f.logFake(c, "wash trading")
		return true
	}
	if suspiciousBotCadence(c) {
		f.logFake(c, "bot cadence")
		return true
	}
	return false
}

func (f *Filter) logFake(c domain.TokenCandidate, pattern string) {
	f.logger.Info("fake volume detected",
		zap.String("chain", c.Chain),
		zap.String("address", c.Address),
		zap.String("symbol", c.Symbol),
		zap.String("pattern", pattern),
	)
}

func (f *Filter) suspiciousRatio(volume, marketCap float64) bool {
	ratio := volume / marketCap
	if ratio > f.cfg.RatioCeiling {
		return true
	}
	if marketCap < f.cfg.SmallCapUSD && ratio > f.cfg.SmallCapRatioCeiling {
		return true
	}
	return ratio > f.cfg.BaseRatioThreshold*50
}

// suspiciousWindowBurst flags short-window volume disproportionate to the
// longer window: a concentrated burst inconsistent with organic trading.
func suspiciousWindowBurst(c domain.TokenCandidate) bool {
	v1h := c.Volume1hUSD.InexactFloat64()
	v6h := c.Volume6hUSD.InexactFloat64()
	v24h := c.Volume24hUSD.InexactFloat64()

	if v1h > 0 && v6h > 0 && v1h > v6h*0.5 {
		return true
	}
	if v6h > 0 && v24h > 0 && v6h > v24h*0.8 {
		return true
	}
	return false
}

// suspiciousWashTrading flags the classic wash-trade signature: near-1:1
// buy/sell counts at high absolute volume, or implausibly many uniform small
// transactions.
func suspiciousWashTrading(c domain.TokenCandidate) bool {
	buys := c.Txns.H24.Buys
	sells := c.Txns.H24.Sells
	if buys == 0 || sells == 0 {
		return false
	}

	ratio := float64(buys) / float64(sells)
	volume := c.Volume24hUSD.InexactFloat64()
	if ratio >= 0.95 && ratio <= 1.05 && volume > 100_000 {
		return true
	}

	total := buys + sells
	if total > 1000 && volume/float64(total) < 100 {
		return true
	}
	return false
}

// suspiciousBotCadence flags sustained machine-like pacing: more than one
// transaction per minute over 24h, or hourly volume suspiciously flat at
// exactly 1/24 of the daily total.
func suspiciousBotCadence(c domain.TokenCandidate) bool {
	total := c.Txns.H24.Total()
	if total > 24*60 {
		return true
	}

	v1h := c.Volume1hUSD.InexactFloat64()
	v24h := c.Volume24hUSD.InexactFloat64()
	if v1h > 0 && v24h > 0 {
		expected := v24h / 24
		if expected > 0 {
			deviation := v1h - expected
			if deviation < 0 {
				deviation = -deviation
			}
			if deviation/expected < 0.1 {
				return true
			}
		}
	}
	return false
}

type Metrics struct {
	Volume24hUSD    float64
	MarketCapUSD    float64
	VolumeToMcap    float64
	TotalTxns24h    int
	BuySellRatio24h float64
	LooksFake       bool
}

func (f *Filter) Metrics(c domain.TokenCandidate) Metrics {
	volume := c.Volume24hUSD.InexactFloat64()
	marketCap := c.MarketCapUSD.InexactFloat64()

	m := Metrics{
		Volume24hUSD: volume,
		MarketCapUSD: marketCap,
		TotalTxns24h: c.Txns.H24.Total(),
		LooksFake:    f.LooksFake(c),
	}
	if marketCap > 0 {
		m.VolumeToMcap = volume / marketCap
	}
	if c.Txns.H24.Sells > 0 {
		m.BuySellRatio24h = float64(c.Txns.H24.Buys) / float64(c.Txns.H24.Sells)
	}
	return m
}
