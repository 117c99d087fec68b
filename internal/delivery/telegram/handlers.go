package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/cooldown"
	"github.com/arskydev/dexwatch/internal/domain"
	"github.com/arskydev/dexwatch/internal/notify"
	"github.com/arskydev/dexwatch/internal/ratelimit"
	"github.com/arskydev/dexwatch/internal/scanner"
)

const HelpText = `Commands:
/help - show this help
/status - scanner health: cooldowns, API budget, alert quota
/stats - scan and alert totals for the last 24h
/toprisks - highest-risk tokens rejected so far
/scan - trigger a scan pass now
`

const statsWindow = 24 * time.Hour

type Handlers struct {
	stats   domain.StatsReader
	tracker *cooldown.Tracker
	gate    *ratelimit.Gate
	quota   *notify.Quota
	scanner *scanner.Scanner
	chatID  int64
	logger  *zap.Logger
}

func NewHandlers(
	stats domain.StatsReader,
	tracker *cooldown.Tracker,
	gate *ratelimit.Gate,
	quota *notify.Quota,
	scan *scanner.Scanner,
	chatID int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		stats:   stats,
		tracker: tracker,
		gate:    gate,
		quota:   quota,
		scanner: scan,
		chatID:  chatID,
		logger:  logger,
	}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	// Single-chat bot: ignore anything outside the configured chat.
	if update.Message.Chat.ID != h.chatID {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	command := update.Message.Command()
	chatID := update.Message.Chat.ID

	h.logger.Info("telegram command received",
		zap.Int64("chat_id", chatID),
		zap.String("command", command),
	)

	switch command {
	case "start", "help":
		h.reply(api, chatID, HelpText)
	case "status":
		h.reply(api, chatID, h.statusText())
	case "stats":
		h.reply(api, chatID, h.statsText(ctx))
	case "toprisks":
		h.reply(api, chatID, h.topRisksText(ctx))
	case "scan":
		h.reply(api, chatID, "Scan pass started.")
		h.scanner.Tick(ctx)
		h.reply(api, chatID, "Scan pass complete.")
	default:
		h.logger.Warn("unknown command", zap.String("command", command))
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) statusText() string {
	apiStats := h.gate.Stats(ratelimit.MarketKey)
	var builder strings.Builder
	builder.WriteString("Scanner status:\n")
	builder.WriteString(fmt.Sprintf("Active cooldowns: %d\n", h.tracker.ActiveCount()))
	builder.WriteString(fmt.Sprintf("API budget: %d/%d calls this window\n", apiStats.CallsInWindow, apiStats.CallsPerWindow))
	builder.WriteString(fmt.Sprintf("Alert quota headroom: %d this minute\n", h.quota.Headroom()))
	return builder.String()
}

func (h *Handlers) statsText(ctx context.Context) string {
	scanStats, err := h.stats.ScanStats(ctx, statsWindow)
	if err != nil {
		h.logger.Warn("scan stats query failed", zap.Error(err))
		return "Stats are unavailable right now."
	}
	summary, err := h.stats.AlertSummary(ctx, statsWindow)
	if err != nil {
		h.logger.Warn("alert summary query failed", zap.Error(err))
		return "Stats are unavailable right now."
	}

	var builder strings.Builder
	builder.WriteString("Last 24h:\n")
	builder.WriteString(fmt.Sprintf("Scanned: %d across %d chains\n", scanStats.TotalScanned, scanStats.ChainsScanned))
	builder.WriteString(fmt.Sprintf("Admitted: %d\n", scanStats.Admitted))
	builder.WriteString(fmt.Sprintf("Rug risks blocked: %d\n", scanStats.RugRisks))
	builder.WriteString(fmt.Sprintf("Fake volume flagged: %d\n", scanStats.FakeVolume))
	builder.WriteString(fmt.Sprintf("Deferred: %d\n", scanStats.Deferred))
	builder.WriteString(fmt.Sprintf("\nAlerts sent: %d", summary.TotalAlerts))
	if summary.TotalAlerts > 0 {
		builder.WriteString(fmt.Sprintf(" (avg risk %.1f)", summary.AvgRiskScore))
		if summary.LastAlert != nil {
			builder.WriteString(fmt.Sprintf("\nLast alert: %s", summary.LastAlert.UTC().Format(time.RFC3339)))
		}
	}
	return builder.String()
}

func (h *Handlers) topRisksText(ctx context.Context) string {
	tokens, err := h.stats.TopRiskTokens(ctx, 10)
	if err != nil {
		h.logger.Warn("top risk query failed", zap.Error(err))
		return "Top risks are unavailable right now."
	}
	if len(tokens) == 0 {
		return "No rug risks recorded yet."
	}

	var builder strings.Builder
	builder.WriteString("Highest-risk rejections:\n")
	for i, token := range tokens {
		name := token.Name
		if name == "" {
			name = token.Symbol
		}
		builder.WriteString(fmt.Sprintf("%d) %s [%s] score %.0f\n", i+1, name, token.Chain, token.RiskScore))
	}
	return builder.String()
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
