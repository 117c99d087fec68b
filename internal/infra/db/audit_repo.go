package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/arskydev/dexwatch/internal/domain"
)

// AuditRepository is both the append-only write side used by the pipeline
// and the windowed read side consumed by the dashboard and bot commands.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) AppendScanRecord(ctx context.Context, record *domain.ScanRecord) error {
	model := mapScanToModel(*record)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	record.ID = model.ID
	return nil
}

func (r *AuditRepository) AppendAlertRecord(ctx context.Context, record *domain.AlertRecord) error {
	model := mapAlertToModel(*record)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	record.ID = model.ID
	return nil
}

func (r *AuditRepository) RecentScans(ctx context.Context, window time.Duration, limit int) ([]domain.ScanRecord, error) {
	var models []scanRecordModel
	err := r.db.WithContext(ctx).
		Where("timestamp >= ?", time.Now().Add(-window)).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapScansToDomain(models), nil
}

func (r *AuditRepository) RecentAlerts(ctx context.Context, window time.Duration, limit int) ([]domain.AlertRecord, error) {
	var models []alertRecordModel
	err := r.db.WithContext(ctx).
		Where("timestamp >= ?", time.Now().Add(-window)).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AuditRepository) ScanStats(ctx context.Context, window time.Duration) (domain.ScanStats, error) {
	since := time.Now().Add(-window)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&scanRecordModel{}).Where("timestamp >= ?", since)
	}

	var stats domain.ScanStats
	if err := base().Count(&stats.TotalScanned).Error; err != nil {
		return domain.ScanStats{}, err
	}
	if err := base().Where("outcome = ?", string(domain.OutcomeAdmitted)).Count(&stats.Admitted).Error; err != nil {
		return domain.ScanStats{}, err
	}
	if err := base().Where("outcome = ?", string(domain.OutcomeRejectedRugRisk)).Count(&stats.RugRisks).Error; err != nil {
		return domain.ScanStats{}, err
	}
	if err := base().Where("outcome IN ?", []string{
		string(domain.OutcomeRejectedVolume),
		string(domain.OutcomeDeferredVolume),
	}).Count(&stats.FakeVolume).Error; err != nil {
		return domain.ScanStats{}, err
	}
	if err := base().Where("outcome IN ?", []string{
		string(domain.OutcomeDeferredSafety),
		string(domain.OutcomeDeferredVolume),
	}).Count(&stats.Deferred).Error; err != nil {
		return domain.ScanStats{}, err
	}
	if err := base().Distinct("chain").Count(&stats.ChainsScanned).Error; err != nil {
		return domain.ScanStats{}, err
	}
	return stats, nil
}

func (r *AuditRepository) AlertSummary(ctx context.Context, window time.Duration) (domain.AlertSummary, error) {
	since := time.Now().Add(-window)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&alertRecordModel{}).Where("timestamp >= ?", since)
	}

	var summary domain.AlertSummary
	if err := base().Count(&summary.TotalAlerts).Error; err != nil {
		return domain.AlertSummary{}, err
	}
	if summary.TotalAlerts == 0 {
		return summary, nil
	}
	if err := base().Distinct("chain").Count(&summary.ChainsActive).Error; err != nil {
		return domain.AlertSummary{}, err
	}

	var avg *float64
	if err := base().Select("AVG(risk_score)").Scan(&avg).Error; err != nil {
		return domain.AlertSummary{}, err
	}
	if avg != nil {
		summary.AvgRiskScore = *avg
	}

	var bounds struct {
		First *time.Time
		Last  *time.Time
	}
	if err := base().Select("MIN(timestamp) AS first, MAX(timestamp) AS last").Scan(&bounds).Error; err != nil {
		return domain.AlertSummary{}, err
	}
	summary.FirstAlert = bounds.First
	summary.LastAlert = bounds.Last
	return summary, nil
}

func (r *AuditRepository) TopRiskTokens(ctx context.Context, limit int) ([]domain.TopRiskToken, error) {
	var models []scanRecordModel
	err := r.db.WithContext(ctx).
		Where("outcome = ?", string(domain.OutcomeRejectedRugRisk)).
		Order("risk_score DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.TopRiskToken, 0, len(models))
	for _, model := range models {
		tokens = append(tokens, domain.TopRiskToken{
			Name:      model.Name,
			Symbol:    model.Symbol,
			Chain:     model.Chain,
			RiskScore: model.RiskScore,
			Timestamp: model.Timestamp,
		})
	}
	return tokens, nil
}

func mapScanToModel(record domain.ScanRecord) scanRecordModel {
	return scanRecordModel{
		ID:           record.ID,
		TickID:       record.TickID,
		Timestamp:    record.Timestamp,
		Chain:        record.Chain,
		Address:      record.Address,
		Name:         record.Name,
		Symbol:       record.Symbol,
		PriceUSD:     record.PriceUSD,
		Volume24hUSD: record.Volume24hUSD,
		LiquidityUSD: record.LiquidityUSD,
		MarketCapUSD: record.MarketCapUSD,
		Outcome:      string(record.Outcome),
		Reason:       record.Reason,
		RiskScore:    record.RiskScore,
		TaxPct:       record.TaxPct,
		Honeypot:     record.Honeypot,
	}
}

func mapScansToDomain(models []scanRecordModel) []domain.ScanRecord {
	records := make([]domain.ScanRecord, 0, len(models))
	for _, model := range models {
		records = append(records, domain.ScanRecord{
			ID:           model.ID,
			TickID:       model.TickID,
			Timestamp:    model.Timestamp,
			Chain:        model.Chain,
			Address:      model.Address,
			Name:         model.Name,
			Symbol:       model.Symbol,
			PriceUSD:     model.PriceUSD,
			Volume24hUSD: model.Volume24hUSD,
			LiquidityUSD: model.LiquidityUSD,
			MarketCapUSD: model.MarketCapUSD,
			Outcome:      domain.Outcome(model.Outcome),
			Reason:       model.Reason,
			RiskScore:    model.RiskScore,
			TaxPct:       model.TaxPct,
			Honeypot:     model.Honeypot,
		})
	}
	return records
}

func mapAlertToModel(record domain.AlertRecord) alertRecordModel {
	return alertRecordModel{
		ID:           record.ID,
		Timestamp:    record.Timestamp,
		Chain:        record.Chain,
		Address:      record.Address,
		Name:         record.Name,
		Symbol:       record.Symbol,
		PriceUSD:     record.PriceUSD,
		Volume24hUSD: record.Volume24hUSD,
		LiquidityUSD: record.LiquidityUSD,
		MarketCapUSD: record.MarketCapUSD,
		RiskScore:    record.RiskScore,
		TaxPct:       record.TaxPct,
	}
}

func mapAlertsToDomain(models []alertRecordModel) []domain.AlertRecord {
	records := make([]domain.AlertRecord, 0, len(models))
	for _, model := range models {
		records = append(records, domain.AlertRecord{
			ID:           model.ID,
			Timestamp:    model.Timestamp,
			Chain:        model.Chain,
			Address:      model.Address,
			Name:         model.Name,
			Symbol:       model.Symbol,
			PriceUSD:     model.PriceUSD,
			Volume24hUSD: model.Volume24hUSD,
			LiquidityUSD: model.LiquidityUSD,
			MarketCapUSD: model.MarketCapUSD,
			RiskScore:    model.RiskScore,
			TaxPct:       model.TaxPct,
		})
	}
	return records
}
