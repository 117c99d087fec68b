package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/domain"
)

const pairsBody = `{
  "pairs": [
    {
      "chainId": "solana",
      "pairAddress": "PAIR1",
      "url": "https://dexscreener.com/solana/PAIR1",
      "baseToken": {"address": "So1abc", "name": "Moon Token", "symbol": "MOON"},
      "priceUsd": "0.004125",
      "volume": {"h1": 3200, "h6": 15000, "h24": "61000.5"},
      "priceChange": {"h24": 145.2},
      "txns": {
        "h1": {"buys": 42, "sells": 31},
        "h6": {"buys": 180, "sells": 140},
        "h24": {"buys": 610, "sells": 480}
      },
      "liquidity": {"usd": 38000},
      "fdv": 850000,
      "marketCap": null,
      "pairCreatedAt": 1748600000000,
      "info": {"holders": 1250, "topHolders": [{"percentage": 12.5}, {"percentage": 8.1}]}
    },
    {
      "chainId": "solana",
      "pairAddress": "PAIR2",
      "baseToken": {"address": "So1abc", "name": "Moon Token", "symbol": "MOON"},
      "priceUsd": "0.004100",
      "liquidity": {"usd": 9000},
      "marketCap": 840000
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, 6000, zap.NewNop()), server
}

func TestFetchCandidatesParsesPairs(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(pairsBody))
	})

	candidates, err := client.FetchCandidates(context.Background(), "solana")

	require.NoError(t, err)
	assert.Equal(t, "/dex/pairs/solana", gotPath)
	require.Len(t, candidates, 2)

	c := candidates[0]
	assert.Equal(t, "solana", c.Chain)
	assert.Equal(t, "So1abc", c.Address)
	assert.Equal(t, "Moon Token", c.Name)
	assert.Equal(t, "MOON", c.Symbol)
	assert.Equal(t, "PAIR1", c.PairAddress)
	assert.Equal(t, "0.004125", c.PriceUSD.String())
	assert.Equal(t, "61000.5", c.Volume24hUSD.String())
	assert.Equal(t, "38000", c.LiquidityUSD.String())
	// marketCap is null, fdv fills in.
	assert.Equal(t, "850000", c.MarketCapUSD.String())
	assert.Equal(t, "145.2", c.PriceChange24hPct.String())
	assert.Equal(t, 610, c.Txns.H24.Buys)
	assert.Equal(t, 480, c.Txns.H24.Sells)
	require.NotNil(t, c.CreatedAt)
	assert.Equal(t, time.UnixMilli(1748600000000).UTC(), *c.CreatedAt)
	require.NotNil(t, c.HolderCount)
	assert.Equal(t, 1250, *c.HolderCount)
	assert.Equal(t, []float64{12.5, 8.1}, c.TopHolderPercents)
}

func TestFetchDetailPicksDeepestPairOnChain(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dex/tokens/So1abc", r.URL.Path)
		w.Write([]byte(pairsBody))
	})

	detail, err := client.FetchDetail(context.Background(), "So1abc", "solana")

	require.NoError(t, err)
	assert.Equal(t, "PAIR1", detail.PairAddress)
	assert.Equal(t, "38000", detail.LiquidityUSD.String())
}

func TestFetchDetailIgnoresOtherChains(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"chainId": "bsc", "baseToken": {"address": "So1abc"}}]}`))
	})

	_, err := client.FetchDetail(context.Background(), "So1abc", "solana")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotFoundStatusMapsToSentinel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchCandidates(context.Background(), "solana")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServerErrorSurfaces(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchCandidates(context.Background(), "solana")

	assert.Error(t, err)
}

func TestMalformedDecimalFieldsDoNotFailDecode(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"chainId": "solana", "baseToken": {"address": "So1abc"}, "priceUsd": "n/a", "liquidity": {"usd": ""}}]}`))
	})

	candidates, err := client.FetchCandidates(context.Background(), "solana")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].PriceUSD.IsZero())
	assert.True(t, candidates[0].LiquidityUSD.IsZero())
}
