package dexscreener

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type pairsResponse struct {
	Pairs []pairPayload `json:"pairs"`
}

type pairPayload struct {
	ChainID     string       `json:"chainId"`
	PairAddress string       `json:"pairAddress"`
	URL         string       `json:"url"`
	BaseToken   tokenPayload `json:"baseToken"`

	PriceUSD      LenientDecimal    `json:"priceUsd"`
	Volume        volumeBuckets     `json:"volume"`
	PriceChange   priceChangeWindow `json:"priceChange"`
	Txns          txnBuckets        `json:"txns"`
	Liquidity     liquidityPayload  `json:"liquidity"`
	FDV           LenientDecimal    `json:"fdv"`
	MarketCap     LenientDecimal    `json:"marketCap"`
	PairCreatedAt int64             `json:"pairCreatedAt"`

	Info *pairInfo `json:"info,omitempty"`
}

type tokenPayload struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type volumeBuckets struct {
	H1  LenientDecimal `json:"h1"`
	H6  LenientDecimal `json:"h6"`
	H24 LenientDecimal `json:"h24"`
}

type priceChangeWindow struct {
	H24 LenientDecimal `json:"h24"`
}

type txnBuckets struct {
	H1  txnCounts `json:"h1"`
	H6  txnCounts `json:"h6"`
	H24 txnCounts `json:"h24"`
}

type txnCounts struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type liquidityPayload struct {
	USD LenientDecimal `json:"usd"`
}

type pairInfo struct {
	Holders    *int         `json:"holders,omitempty"`
	TopHolders []holderSlot `json:"topHolders,omitempty"`
}

type holderSlot struct {
	Percentage float64 `json:"percentage"`
}

// LenientDecimal accepts numbers, numeric strings and null. The upstream API
// mixes all three for the same field depending on the pair.
type LenientDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (n *LenientDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		n.Valid = false
		return nil
	}
	if trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.Trim(trimmed, "\"")
	}
	if trimmed == "" {
		n.Valid = false
		return nil
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		n.Valid = false
		return nil
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}

func (n LenientDecimal) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Decimal.String())
}

func (n LenientDecimal) or(fallback LenientDecimal) decimal.Decimal {
	if n.Valid {
		return n.Decimal
	}
	return fallback.Decimal
}
