package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// KPIType represents a benchmarked key performance indicator
type KPIType string

const (
	KPICPA  KPIType = "CPA"
	KPIROAS KPIType = "ROAS"
	KPICTR  KPIType = "CTR"
	KPICPC  KPIType = "CPC"
	KPICPM  KPIType = "CPM"
	KPICVR  KPIType = "CVR"
)

// String returns the string representation of the KPI
func (k KPIType) String() string {
	return string(k)
}

// Valid checks if the KPI is valid
func (k KPIType) Valid() bool {
	switch k {
	case KPICPA, KPIROAS, KPICTR, KPICPC, KPICPM, KPICVR:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for KPIType
func (k *KPIType) Scan(value any) error {
	if value == nil {
		*k = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*k = KPIType(v)
	case []byte:
		*k = KPIType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into KPIType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for KPIType
func (k KPIType) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid KPIType: %s", k)
	}
	return string(k), nil
}

// Benchmark is a reference distribution for one KPI within one
// industry/platform/channel slice. Reference data is immutable here and
// refreshed by an external pipeline.
type Benchmark struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Industry     string    `gorm:"size:512;not null;index:idx_benchmarks_industry" json:"industry"`
	Platform     string    `gorm:"size:64;not null;index:idx_benchmarks_platform" json:"platform"`
	Channel      string    `gorm:"size:64" json:"channel"`
	KPI          KPIType   `gorm:"type:benchmark_kpi;column:kpi;not null" json:"kpi"`
	Percentile25 float64   `gorm:"column:percentile_25;not null" json:"percentile_25"`
	Median       float64   `gorm:"not null" json:"median"`
	Percentile75 float64   `gorm:"column:percentile_75;not null" json:"percentile_75"`
	SampleSize   int       `gorm:"not null;default:0" json:"sample_size"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (Benchmark) TableName() string {
	return "benchmarks"
}

// MatchesPlatform compares the benchmark platform case-insensitively
func (b *Benchmark) MatchesPlatform(platform string) bool {
	return strings.EqualFold(strings.TrimSpace(b.Platform), strings.TrimSpace(platform))
}

// MatchesIndustry reports whether the benchmark's hierarchical industry string
// contains any of the given classification levels as a substring, ignoring case.
func (b *Benchmark) MatchesIndustry(levels []string) bool {
	if len(levels) == 0 {
		return false
	}
	industry := strings.ToLower(b.Industry)
	for _, level := range levels {
		level = strings.ToLower(strings.TrimSpace(level))
		if level == "" {
			continue
		}
		if strings.Contains(industry, level) {
			return true
		}
	}
	return false
}

// BenchmarkFilter represents filter criteria for benchmarks
type BenchmarkFilter struct {
	ID       *uint    `json:"id,omitempty"`
	Platform *string  `json:"platform,omitempty"`
	Industry *string  `json:"industry,omitempty"`
	KPI      *KPIType `json:"kpi,omitempty"`
}
