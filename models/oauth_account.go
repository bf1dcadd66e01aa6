package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OAuthAccountStatus represents the status of an OAuth connection
type OAuthAccountStatus string

const (
	OAuthAccountStatusActive       OAuthAccountStatus = "active"
	OAuthAccountStatusPending      OAuthAccountStatus = "pending"
	OAuthAccountStatusError        OAuthAccountStatus = "error"
	OAuthAccountStatusDisconnected OAuthAccountStatus = "disconnected"
)

// String returns the string representation of the status
func (s OAuthAccountStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s OAuthAccountStatus) Valid() bool {
	switch s {
	case OAuthAccountStatusActive, OAuthAccountStatusPending,
		OAuthAccountStatusError, OAuthAccountStatusDisconnected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for OAuthAccountStatus
func (s *OAuthAccountStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = OAuthAccountStatus(v)
	case []byte:
		*s = OAuthAccountStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OAuthAccountStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for OAuthAccountStatus
func (s OAuthAccountStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid OAuthAccountStatus: %s", s)
	}
	return string(s), nil
}

// OAuthAccount represents one (user, provider) platform connection.
// At most one active row may exist per (user_id, provider); superseded rows are
// marked disconnected, never hard-deleted.
type OAuthAccount struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uk_oauth_accounts_uuid" json:"uuid"`
	UserID       uint               `gorm:"not null;index:idx_oauth_accounts_user_id" json:"user_id"`
	CompanyID    uint               `gorm:"not null;index:idx_oauth_accounts_company_id" json:"company_id"`
	Provider     ProviderType       `gorm:"type:oauth_provider;not null;index:idx_oauth_accounts_provider" json:"provider"`
	AccountID    string             `gorm:"size:255;not null" json:"account_id"`
	AccessToken  string             `gorm:"type:text;not null" json:"-"`
	RefreshToken string             `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time          `gorm:"not null" json:"expires_at"`
	Status       OAuthAccountStatus `gorm:"type:oauth_account_status;not null;default:'pending';index:idx_oauth_accounts_status" json:"status"`
	LastSyncedAt *time.Time         `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time          `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
}

// TableName returns the table name for the model
func (OAuthAccount) TableName() string {
	return "oauth_accounts"
}

// BeforeCreate is called before creating a new record
func (a *OAuthAccount) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.Status == "" {
		a.Status = OAuthAccountStatusPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *OAuthAccount) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	a.UpdatedAt = &now
	return nil
}

// TokenExpired reports whether the stored access token must be refreshed before
// any fetch. The skew keeps a token from expiring mid-request.
func (a *OAuthAccount) TokenExpired() bool {
	return !utils.UTCNow().Add(utils.AccessTokenSkew).Before(a.ExpiresAt)
}

// IsSyncable checks if the connection can currently be synced
func (a *OAuthAccount) IsSyncable() bool {
	return a.Status == OAuthAccountStatusActive && a.RefreshToken != ""
}

// OAuthAccountFilter represents filter criteria for OAuth accounts
type OAuthAccountFilter struct {
	ID        *uint               `json:"id,omitempty"`
	UUID      *uuid.UUID          `json:"uuid,omitempty"`
	UserID    *uint               `json:"user_id,omitempty"`
	CompanyID *uint               `json:"company_id,omitempty"`
	Provider  *ProviderType       `json:"provider,omitempty"`
	Status    *OAuthAccountStatus `json:"status,omitempty"`
}
