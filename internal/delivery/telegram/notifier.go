package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/domain"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier implements domain.NotificationChannel: it formats one admitted
// candidate as an HTML alert and sends it to the configured chat.
type Notifier struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, chatID int64, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, logger: logger}
}

func (n *Notifier) Deliver(_ context.Context, candidate domain.TokenCandidate, verdict domain.RiskVerdict) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(candidate, verdict))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if keyboard, ok := alertKeyboard(candidate); ok {
		msg.ReplyMarkup = keyboard
	}

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("telegram send failed",
			zap.String("chain", candidate.Chain),
			zap.String("address", candidate.Address),
			zap.Error(err),
		)
		return classifySendError(err)
	}
	return nil
}

// classifySendError decides whether a failure is worth retrying. Rate limits
// and Telegram server errors are transient; a malformed request or revoked
// token will not heal on retry.
func classifySendError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return fmt.Errorf("%w: telegram status %d: %s", domain.ErrTransientDelivery, apiErr.Code, apiErr.Message)
		}
		return err
	}
	// Anything that is not an API-level rejection is a transport failure.
	return fmt.Errorf("%w: %v", domain.ErrTransientDelivery, err)
}

func alertKeyboard(candidate domain.TokenCandidate) (tgbotapi.InlineKeyboardMarkup, bool) {
	var row []tgbotapi.InlineKeyboardButton
	if candidate.ChartURL != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL("Chart", candidate.ChartURL))
	}
	if swap := swapURL(candidate.Chain, candidate.Address); swap != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL("Swap", swap))
	}
	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

func swapURL(chain, address string) string {
	switch chain {
	case "solana":
		return "https://jup.ag/swap/SOL-" + address
	case "bsc":
		return "https://pancakeswap.finance/swap?outputCurrency=" + address
	case "ethereum":
		return "https://app.uniswap.org/swap?outputCurrency=" + address
	}
	return ""
}
