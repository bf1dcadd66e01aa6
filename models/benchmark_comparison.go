package models

import (
	"time"

	"github.com/benchmetrics/compscore/utils"
	"gorm.io/gorm"
)

// BenchmarkComparison is the join artifact of one campaign's value against one
// benchmark for one KPI. Uniquely keyed by (company_id, campaign_id,
// benchmark_id); every sync recomputes and upserts, never duplicates.
// Rows are written solely from scorer output.
type BenchmarkComparison struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CompanyID   uint    `gorm:"not null;uniqueIndex:uk_campaign_benchmarks,priority:1" json:"company_id"`
	CampaignID  uint    `gorm:"not null;uniqueIndex:uk_campaign_benchmarks,priority:2;index:idx_campaign_benchmarks_campaign" json:"campaign_id"`
	BenchmarkID uint    `gorm:"not null;uniqueIndex:uk_campaign_benchmarks,priority:3" json:"benchmark_id"`
	KPI         KPIType `gorm:"type:benchmark_kpi;column:kpi;not null" json:"kpi"`

	UserValue           float64 `gorm:"not null" json:"user_value"`
	BenchmarkPercentile int     `gorm:"not null" json:"benchmark_percentile"`
	PerformanceScore    int     `gorm:"not null" json:"performance_score"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Campaign  *Campaign  `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Benchmark *Benchmark `gorm:"foreignKey:BenchmarkID;references:ID" json:"benchmark,omitempty"`
}

// TableName returns the table name for the model
func (BenchmarkComparison) TableName() string {
	return "campaign_benchmarks"
}

// BeforeCreate is called before creating a new record
func (b *BenchmarkComparison) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (b *BenchmarkComparison) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	b.UpdatedAt = &now
	return nil
}

// DisplayBucket maps the persisted 25/50/75/90 percentile to the coarse
// 10/30/60/90 scale used for UI percentile badges. The two scales are kept
// separate on purpose; only the read API applies this mapping.
func (b *BenchmarkComparison) DisplayBucket() int {
	switch b.BenchmarkPercentile {
	case 90:
		return 90
	case 75:
		return 60
	case 50:
		return 30
	default:
		return 10
	}
}

// BenchmarkComparisonFilter represents filter criteria for comparisons
type BenchmarkComparisonFilter struct {
	ID          *uint    `json:"id,omitempty"`
	CompanyID   *uint    `json:"company_id,omitempty"`
	CampaignID  *uint    `json:"campaign_id,omitempty"`
	BenchmarkID *uint    `json:"benchmark_id,omitempty"`
	KPI         *KPIType `json:"kpi,omitempty"`
}
