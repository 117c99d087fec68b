package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrTransientDelivery marks a notification failure that is worth
	// retrying; any other delivery error is treated as fatal for the attempt.
	ErrTransientDelivery = errors.New("transient delivery failure")
)

// MarketDataSource lists candidate pairs for a chain and resolves per-token
// detail. Implementations degrade to empty/absent results on upstream
// failures instead of failing the scan.
type MarketDataSource interface {
	FetchCandidates(ctx context.Context, chain string) ([]TokenCandidate, error)
	FetchDetail(ctx context.Context, address, chain string) (*TokenCandidate, error)
}

// RiskReportSource fetches the external risk report. A (nil, nil) return
// means the report is absent for this token, which is not an error.
type RiskReportSource interface {
	FetchReport(ctx context.Context, address, chain string) (*RiskReport, error)
}

// AuditLog is the append-only decision log. Writers treat it as best-effort:
// a storage failure is logged and never blocks an admission decision.
type AuditLog interface {
	AppendScanRecord(ctx context.Context, record *ScanRecord) error
	AppendAlertRecord(ctx context.Context, record *AlertRecord) error
}

// StatsReader is the time-windowed read side consumed by the dashboard.
type StatsReader interface {
	RecentScans(ctx context.Context, window time.Duration, limit int) ([]ScanRecord, error)
	RecentAlerts(ctx context.Context, window time.Duration, limit int) ([]AlertRecord, error)
	ScanStats(ctx context.Context, window time.Duration) (ScanStats, error)
	AlertSummary(ctx context.Context, window time.Duration) (AlertSummary, error)
	TopRiskTokens(ctx context.Context, limit int) ([]TopRiskToken, error)
}

// NotificationChannel delivers one formatted alert to the single configured
// destination. Transient failures are reported wrapped in
// ErrTransientDelivery.
type NotificationChannel interface {
	Deliver(ctx context.Context, candidate TokenCandidate, verdict RiskVerdict) error
}
