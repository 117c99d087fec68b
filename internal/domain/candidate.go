package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TxnCounts struct {
	Buys  int
	Sells int
}

func (t TxnCounts) Total() int {
	return t.Buys + t.Sells
}

type TxnActivity struct {
	H1  TxnCounts
	H6  TxnCounts
	H24 TxnCounts
}

type LiquiditySample struct {
	Timestamp    time.Time
	LiquidityUSD decimal.Decimal
}

// TokenCandidate is one observed trading pair at a point in time. It is
// built fresh each scan tick and never mutated during a pipeline pass.
type TokenCandidate struct {
	Chain        string
	Address      string
	Name         string
	Symbol       string
	PairAddress  string
	ChartURL     string
	PriceUSD     decimal.Decimal
	Volume1hUSD  decimal.Decimal
	Volume6hUSD  decimal.Decimal
	Volume24hUSD decimal.Decimal
	LiquidityUSD decimal.Decimal
	MarketCapUSD decimal.Decimal

	// PriceChange24hPct is a percentage, e.g. 120 means +120%.
	PriceChange24hPct decimal.Decimal

	CreatedAt *time.Time
	Txns      TxnActivity

	// Optional enrichment from the detail endpoint. Absent data is nil/empty
	// and contributes nothing to risk scoring.
	HolderCount       *int
	TopHolderPercents []float64
	LiquidityHistory  []LiquiditySample
}

func (c TokenCandidate) Age(now time.Time) (time.Duration, bool) {
	if c.CreatedAt == nil {
		return 0, false
	}
	return now.Sub(*c.CreatedAt), true
}

func (c TokenCandidate) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	if strings.TrimSpace(c.Symbol) != "" {
		return c.Symbol
	}
	return c.Address
}
