package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arskydev/dexwatch/internal/domain"
)

func FormatAlert(candidate domain.TokenCandidate, verdict domain.RiskVerdict) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🚨 <b>%s</b> (%s)\n",
		html.EscapeString(candidate.DisplayName()),
		html.EscapeString(candidate.Symbol),
	))
	builder.WriteString(fmt.Sprintf("Chain: %s\n", candidate.Chain))
	builder.WriteString(fmt.Sprintf("<code>%s</code>\n\n", candidate.Address))

	builder.WriteString(fmt.Sprintf("💰 Price: $%s\n", candidate.PriceUSD.String()))
	builder.WriteString(fmt.Sprintf("📊 Market cap: %s\n", humanUSD(candidate.MarketCapUSD)))
	builder.WriteString(fmt.Sprintf("💧 Liquidity: %s\n", humanUSD(candidate.LiquidityUSD)))
	builder.WriteString(fmt.Sprintf("📈 Volume 24h: %s\n", humanUSD(candidate.Volume24hUSD)))
	if !candidate.PriceChange24hPct.IsZero() {
		builder.WriteString(fmt.Sprintf("Δ 24h: %s%%\n", candidate.PriceChange24hPct.StringFixed(1)))
	}
	if age, ok := candidate.Age(time.Now()); ok {
		builder.WriteString(fmt.Sprintf("⏱ Age: %s\n", humanAge(age)))
	}

	builder.WriteString(fmt.Sprintf("\n%s Risk score: %.0f/100", riskEmoji(verdict.Score), verdict.Score))
	if verdict.TaxPct > 0 {
		builder.WriteString(fmt.Sprintf("\nTax: %.1f%%", verdict.TaxPct))
	}

	return builder.String()
}

func riskEmoji(score float64) string {
	switch {
	case score < 30:
		return "🟢"
	case score < 60:
		return "🟡"
	default:
		return "🔴"
	}
}

func humanUSD(value decimal.Decimal) string {
	f := value.InexactFloat64()
	switch {
	case f >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", f/1_000_000_000)
	case f >= 1_000_000:
		return fmt.Sprintf("$%.2fM", f/1_000_000)
	case f >= 1_000:
		return fmt.Sprintf("$%.1fK", f/1_000)
	default:
		return fmt.Sprintf("$%.2f", f)
	}
}

func humanAge(age time.Duration) string {
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%.1fh", age.Hours())
	default:
		return fmt.Sprintf("%.1fd", age.Hours()/24)
	}
}
