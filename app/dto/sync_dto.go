package dto

import "time"

// TriggerSyncRequest represents a user-initiated sync request
type TriggerSyncRequest struct {
	UserID     uint       `json:"-"`
	CompanyID  uint       `json:"-"`
	Provider   string     `json:"provider" validate:"required,oneof=google_ads meta_ads linkedin_ads tiktok_ads google_analytics"`
	JobType    string     `json:"job_type" validate:"omitempty,oneof=initial_backfill daily_delta manual"`
	DaysBack   int        `json:"days_back" validate:"omitempty,min=1,max=90"`
	TargetDate *time.Time `json:"target_date,omitempty"`
}

// SyncLogDTO represents one sync attempt in responses
type SyncLogDTO struct {
	UUID          string  `json:"uuid"`
	Provider      string  `json:"provider"`
	JobType       string  `json:"job_type"`
	Status        string  `json:"status"`
	Message       string  `json:"message,omitempty"`
	RecordsSynced int     `json:"records_synced"`
	StartedAt     string  `json:"started_at"`
	CompletedAt   *string `json:"completed_at,omitempty"`
}

// TriggerSyncResponse represents the outcome of a sync attempt
type TriggerSyncResponse struct {
	Message string     `json:"message"`
	SyncLog SyncLogDTO `json:"sync_log"`
}

// ListSyncLogsRequest represents the request to list sync history
type ListSyncLogsRequest struct {
	UserID   uint `json:"-"`
	Page     int  `json:"page" validate:"omitempty,min=1"`
	PageSize int  `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListSyncLogsResponse represents a page of sync history
type ListSyncLogsResponse struct {
	Message string       `json:"message"`
	Items   []SyncLogDTO `json:"items"`
	Page    int          `json:"page"`
	Total   int64        `json:"total"`
}
