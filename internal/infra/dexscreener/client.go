package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/arskydev/dexwatch/internal/domain"
)

// Client implements domain.MarketDataSource against the Dexscreener REST API.
// All outbound calls share one token-bucket limiter so the per-minute budget
// holds across chains.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, callsPerMinute int, logger *zap.Logger) *Client {
	if callsPerMinute <= 0 {
		callsPerMinute = 60
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute),
		logger:  logger,
	}
}

func (c *Client) FetchCandidates(ctx context.Context, chain string) ([]domain.TokenCandidate, error) {
	endpoint := fmt.Sprintf("%s/dex/pairs/%s", c.baseURL, url.PathEscape(chain))
	payload, err := c.getPairs(ctx, endpoint, chain)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.TokenCandidate, 0, len(payload.Pairs))
	for _, pair := range payload.Pairs {
		candidates = append(candidates, mapPair(pair, chain))
	}
	return candidates, nil
}

// FetchDetail resolves one token. When the token trades on several pairs the
// deepest one wins.
func (c *Client) FetchDetail(ctx context.Context, address, chain string) (*domain.TokenCandidate, error) {
	endpoint := fmt.Sprintf("%s/dex/tokens/%s", c.baseURL, url.PathEscape(address))
	payload, err := c.getPairs(ctx, endpoint, chain)
	if err != nil {
		return nil, err
	}

	var best *pairPayload
	for i := range payload.Pairs {
		pair := &payload.Pairs[i]
		if !strings.EqualFold(pair.ChainID, chain) {
			continue
		}
		if best == nil || pair.Liquidity.USD.Decimal.GreaterThan(best.Liquidity.USD.Decimal) {
			best = pair
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}

	detail := mapPair(*best, chain)
	return &detail, nil
}

func (c *Client) getPairs(ctx context.Context, endpoint, chain string) (*pairsResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("dexscreener request failed",
			zap.String("chain", chain),
			zap.String("url", endpoint),
			zap.Error(err),
		)
		return nil, err
	}
	defer response.Body.Close()

	c.logger.Debug("dexscreener request complete",
		zap.String("chain", chain),
		zap.String("url", endpoint),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("dexscreener error: status %d", response.StatusCode)
	}

	var payload pairsResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func mapPair(pair pairPayload, chain string) domain.TokenCandidate {
	candidate := domain.TokenCandidate{
		Chain:             chain,
		Address:           pair.BaseToken.Address,
		Name:              pair.BaseToken.Name,
		Symbol:            pair.BaseToken.Symbol,
		PairAddress:       pair.PairAddress,
		ChartURL:          pair.URL,
		PriceUSD:          pair.PriceUSD.Decimal,
		Volume1hUSD:       pair.Volume.H1.Decimal,
		Volume6hUSD:       pair.Volume.H6.Decimal,
		Volume24hUSD:      pair.Volume.H24.Decimal,
		LiquidityUSD:      pair.Liquidity.USD.Decimal,
		MarketCapUSD:      pair.MarketCap.or(pair.FDV),
		PriceChange24hPct: pair.PriceChange.H24.Decimal,
		Txns: domain.TxnActivity{
			H1:  domain.TxnCounts{Buys: pair.Txns.H1.Buys, Sells: pair.Txns.H1.Sells},
			H6:  domain.TxnCounts{Buys: pair.Txns.H6.Buys, Sells: pair.Txns.H6.Sells},
			H24: domain.TxnCounts{Buys: pair.Txns.H24.Buys, Sells: pair.Txns.H24.Sells},
		},
	}

	if pair.PairCreatedAt > 0 {
		created := time.UnixMilli(pair.PairCreatedAt).UTC()
		candidate.CreatedAt = &created
	}

	if pair.Info != nil {
		candidate.HolderCount = pair.Info.Holders
		for _, holder := range pair.Info.TopHolders {
			candidate.TopHolderPercents = append(candidate.TopHolderPercents, holder.Percentage)
		}
	}

	return candidate
}
