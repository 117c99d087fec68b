package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/domain"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func sampleCandidate() domain.TokenCandidate {
	created := time.Now().Add(-26 * time.Hour)
	return domain.TokenCandidate{
		Chain:             "solana",
		Address:           "So1abc",
		Name:              "Moon <Token>",
		Symbol:            "MOON",
		ChartURL:          "https://dexscreener.com/solana/PAIR1",
		PriceUSD:          decimal.NewFromFloat(0.0041),
		Volume24hUSD:      decimal.NewFromInt(61_000),
		LiquidityUSD:      decimal.NewFromInt(38_000),
		MarketCapUSD:      decimal.NewFromInt(850_000),
		PriceChange24hPct: decimal.NewFromFloat(145.2),
		CreatedAt:         &created,
	}
}

func TestDeliverSendsHTMLAlertWithKeyboard(t *testing.T) {
	sender := &fakeSender{}
	notifier := &Notifier{api: sender, chatID: 42, logger: zap.NewNop()}

	err := notifier.Deliver(context.Background(), sampleCandidate(), domain.RiskVerdict{Score: 25})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Moon &lt;Token&gt;")
	assert.Contains(t, msg.Text, "$850.0K")
	assert.Contains(t, msg.Text, "Risk score: 25/100")
	require.NotNil(t, msg.ReplyMarkup)

	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 1)
	assert.Len(t, keyboard.InlineKeyboard[0], 2)
}

func TestRateLimitErrorIsTransient(t *testing.T) {
	sender := &fakeSender{err: &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}}
	notifier := &Notifier{api: sender, chatID: 42, logger: zap.NewNop()}

	err := notifier.Deliver(context.Background(), sampleCandidate(), domain.RiskVerdict{})

	assert.ErrorIs(t, err, domain.ErrTransientDelivery)
}

func TestServerErrorIsTransient(t *testing.T) {
	sender := &fakeSender{err: &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}}
	notifier := &Notifier{api: sender, chatID: 42, logger: zap.NewNop()}

	err := notifier.Deliver(context.Background(), sampleCandidate(), domain.RiskVerdict{})

	assert.ErrorIs(t, err, domain.ErrTransientDelivery)
}

func TestBadRequestIsFatal(t *testing.T) {
	sender := &fakeSender{err: &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}}
	notifier := &Notifier{api: sender, chatID: 42, logger: zap.NewNop()}

	err := notifier.Deliver(context.Background(), sampleCandidate(), domain.RiskVerdict{})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrTransientDelivery))
}

func TestNetworkErrorIsTransient(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: connection refused")}
	notifier := &Notifier{api: sender, chatID: 42, logger: zap.NewNop()}

	err := notifier.Deliver(context.Background(), sampleCandidate(), domain.RiskVerdict{})

	assert.ErrorIs(t, err, domain.ErrTransientDelivery)
}

func TestFormatAlertOmitsAbsentFields(t *testing.T) {
	candidate := sampleCandidate()
	candidate.CreatedAt = nil
	candidate.PriceChange24hPct = decimal.Zero

	text := FormatAlert(candidate, domain.RiskVerdict{Score: 80, TaxPct: 12})

	assert.NotContains(t, text, "Age:")
	assert.NotContains(t, text, "Δ 24h")
	assert.Contains(t, text, "Tax: 12.0%")
	assert.Contains(t, text, "🔴")
}

func TestSwapURLPerChain(t *testing.T) {
	assert.Contains(t, swapURL("solana", "So1abc"), "jup.ag")
	assert.Contains(t, swapURL("bsc", "0xabc"), "pancakeswap")
	assert.Contains(t, swapURL("ethereum", "0xdef"), "uniswap")
	assert.Empty(t, swapURL("base", "0x123"))
}
