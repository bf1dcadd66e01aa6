package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncStatus represents the status of a sync attempt
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// String returns the string representation of the status
func (s SyncStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusRunning, SyncStatusCompleted, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SyncStatus
func (s *SyncStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = SyncStatus(v)
	case []byte:
		*s = SyncStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SyncStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SyncStatus
func (s SyncStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SyncStatus: %s", s)
	}
	return string(s), nil
}

// SyncJobType identifies what triggered a sync attempt
type SyncJobType string

const (
	SyncJobInitialBackfill SyncJobType = "initial_backfill"
	SyncJobDailyDelta      SyncJobType = "daily_delta"
	SyncJobManual          SyncJobType = "manual"
)

// Valid checks if the job type is valid
func (j SyncJobType) Valid() bool {
	switch j {
	case SyncJobInitialBackfill, SyncJobDailyDelta, SyncJobManual:
		return true
	default:
		return false
	}
}

// SyncLog is the audit record of one sync attempt. Exactly one row is created
// when the attempt starts and the same row is updated in place at the terminal
// transition; rows are never deleted.
type SyncLog struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_sync_logs_uuid" json:"uuid"`
	UserID        uint         `gorm:"not null;index:idx_sync_logs_user_id" json:"user_id"`
	CompanyID     uint         `gorm:"not null;index:idx_sync_logs_company_id" json:"company_id"`
	Provider      ProviderType `gorm:"type:oauth_provider;not null" json:"provider"`
	JobType       SyncJobType  `gorm:"size:32;not null;default:'manual'" json:"job_type"`
	Status        SyncStatus   `gorm:"type:sync_status;not null;default:'running';index:idx_sync_logs_status" json:"status"`
	Message       string       `gorm:"type:text" json:"message"`
	RecordsSynced int          `gorm:"not null;default:0" json:"records_synced"`
	StartedAt     time.Time    `gorm:"not null" json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (SyncLog) TableName() string {
	return "sync_logs"
}

// BeforeCreate is called before creating a new record
func (l *SyncLog) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	if l.Status == "" {
		l.Status = SyncStatusRunning
	}
	if l.StartedAt.IsZero() {
		l.StartedAt = utils.UTCNow()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CanTransitionTo checks if the sync log can transition to the given status.
// Running is the only non-terminal state.
func (l *SyncLog) CanTransitionTo(newStatus SyncStatus) bool {
	switch l.Status {
	case SyncStatusRunning:
		return newStatus == SyncStatusCompleted || newStatus == SyncStatusFailed
	default:
		return false
	}
}

// IsTerminal checks if the sync attempt has finished
func (l *SyncLog) IsTerminal() bool {
	return l.Status == SyncStatusCompleted || l.Status == SyncStatusFailed
}

// SyncLogFilter represents filter criteria for sync logs
type SyncLogFilter struct {
	ID            *uint         `json:"id,omitempty"`
	UUID          *uuid.UUID    `json:"uuid,omitempty"`
	UserID        *uint         `json:"user_id,omitempty"`
	CompanyID     *uint         `json:"company_id,omitempty"`
	Provider      *ProviderType `json:"provider,omitempty"`
	Status        *SyncStatus   `json:"status,omitempty"`
	JobType       *SyncJobType  `json:"job_type,omitempty"`
	StartedAfter  *time.Time    `json:"started_after,omitempty"`
	StartedBefore *time.Time    `json:"started_before,omitempty"`
}
