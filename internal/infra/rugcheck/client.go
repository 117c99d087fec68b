package rugcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/arskydev/dexwatch/internal/domain"
)

// Client implements domain.RiskReportSource against the Rugcheck API. The
// upstream flaps under load, so calls go through a circuit breaker: while
// the breaker is open every fetch degrades to an immediate error without
// touching the network.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "rugcheck",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// FetchReport returns (nil, nil) when no report exists for the token. A 404
// is a definitive absence and does not count against the breaker.
func (c *Client) FetchReport(ctx context.Context, address, chain string) (*domain.RiskReport, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, address, chain)
	})
	if err != nil {
		return nil, err
	}
	report, _ := result.(*domain.RiskReport)
	return report, nil
}

func (c *Client) fetch(ctx context.Context, address, chain string) (*domain.RiskReport, error) {
	endpoint := fmt.Sprintf("%s/tokens/%s/report", c.baseURL, url.PathEscape(address))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("rugcheck request failed",
			zap.String("chain", chain),
			zap.String("address", address),
			zap.Error(err),
		)
		return nil, err
	}
	defer response.Body.Close()

	c.logger.Debug("rugcheck request complete",
		zap.String("chain", chain),
		zap.String("address", address),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("rugcheck error: status %d", response.StatusCode)
	}

	var payload reportPayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.toReport(), nil
}
