package dto

// BenchmarkContextDTO carries the benchmark an observed value was scored against
type BenchmarkContextDTO struct {
	Industry string  `json:"industry"`
	Platform string  `json:"platform"`
	Channel  string  `json:"channel,omitempty"`
	P25      float64 `json:"p25"`
	Median   float64 `json:"median"`
	P75      float64 `json:"p75"`
}

// ComparisonDTO represents one scored campaign metric
type ComparisonDTO struct {
	CampaignUUID     string              `json:"campaign_uuid"`
	CampaignName     string              `json:"campaign_name"`
	KPI              string              `json:"kpi"`
	UserValue        float64             `json:"user_value"`
	PercentileBucket int                 `json:"percentile_bucket"`
	PerformanceScore int                 `json:"performance_score"`
	Benchmark        BenchmarkContextDTO `json:"benchmark"`
	UpdatedAt        string              `json:"updated_at"`
}

// ListComparisonsRequest represents the request to list scored metrics
type ListComparisonsRequest struct {
	UserID       uint   `json:"-"`
	CompanyID    uint   `json:"-"`
	CampaignUUID string `json:"-" validate:"omitempty,uuid4"`
	Page         int    `json:"page" validate:"omitempty,min=1"`
	PageSize     int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListComparisonsResponse represents a page of scored metrics
type ListComparisonsResponse struct {
	Message string          `json:"message"`
	Items   []ComparisonDTO `json:"items"`
	Page    int             `json:"page"`
	Total   int64           `json:"total"`
}

// ExportComparisonsRequest represents the request to export scored metrics
type ExportComparisonsRequest struct {
	UserID    uint `json:"-"`
	CompanyID uint `json:"-"`
}
