package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type scanRecordModel struct {
	ID           uint      `gorm:"primaryKey"`
	TickID       string    `gorm:"index;not null"`
	Timestamp    time.Time `gorm:"index:idx_scan_records_ts;not null"`
	Chain        string    `gorm:"index;not null"`
	Address      string    `gorm:"index;not null"`
	Name         string
	Symbol       string
	PriceUSD     decimal.Decimal `gorm:"type:numeric"`
	Volume24hUSD decimal.Decimal `gorm:"type:numeric"`
	LiquidityUSD decimal.Decimal `gorm:"type:numeric"`
	MarketCapUSD decimal.Decimal `gorm:"type:numeric"`
	Outcome      string          `gorm:"index;not null"`
	Reason       string
	RiskScore    float64
	TaxPct       float64
	Honeypot     bool
}

func (scanRecordModel) TableName() string { return "scan_records" }

type alertRecordModel struct {
	ID           uint      `gorm:"primaryKey"`
	Timestamp    time.Time `gorm:"index:idx_alert_records_ts;not null"`
	Chain        string    `gorm:"index;not null"`
	Address      string    `gorm:"index;not null"`
	Name         string
	Symbol       string
	PriceUSD     decimal.Decimal `gorm:"type:numeric"`
	Volume24hUSD decimal.Decimal `gorm:"type:numeric"`
	LiquidityUSD decimal.Decimal `gorm:"type:numeric"`
	MarketCapUSD decimal.Decimal `gorm:"type:numeric"`
	RiskScore    float64
	TaxPct       float64
}

func (alertRecordModel) TableName() string { return "alert_records" }
