package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelType represents the marketing channel of a campaign
type ChannelType string

const (
	ChannelSearch   ChannelType = "Search"
	ChannelSocial   ChannelType = "Social"
	ChannelVideo    ChannelType = "Video"
	ChannelShopping ChannelType = "Shopping"
	ChannelDisplay  ChannelType = "Display"
	ChannelOther    ChannelType = "Other"
)

// String returns the string representation of the channel
func (c ChannelType) String() string {
	return string(c)
}

// Valid checks if the channel is valid
func (c ChannelType) Valid() bool {
	switch c {
	case ChannelSearch, ChannelSocial, ChannelVideo,
		ChannelShopping, ChannelDisplay, ChannelOther:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ChannelType
func (c *ChannelType) Scan(value any) error {
	if value == nil {
		*c = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*c = ChannelType(v)
	case []byte:
		*c = ChannelType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ChannelType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ChannelType
func (c ChannelType) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid ChannelType: %s", c)
	}
	return string(c), nil
}

// Campaign holds one marketing campaign's metrics for a sync window.
// (ExternalID, Provider, CompanyID) uniquely identifies a row; a re-sync
// overwrites the metrics in place instead of appending.
type Campaign struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	ExternalID string       `gorm:"size:255;not null;uniqueIndex:uk_campaigns_external,priority:1" json:"external_id"`
	Provider   ProviderType `gorm:"type:oauth_provider;not null;uniqueIndex:uk_campaigns_external,priority:2" json:"provider"`
	CompanyID  uint         `gorm:"not null;uniqueIndex:uk_campaigns_external,priority:3;index:idx_campaigns_company_id" json:"company_id"`

	OAuthAccountID uint        `gorm:"column:oauth_account_id;not null;index:idx_campaigns_oauth_account_id" json:"oauth_account_id"`
	Name           string      `gorm:"size:512;not null" json:"name"`
	Channel        ChannelType `gorm:"type:campaign_channel;not null;default:'Other'" json:"channel"`
	Status         string      `gorm:"size:64" json:"status"`

	// Raw counters
	Impressions     int64   `gorm:"not null;default:0" json:"impressions"`
	Clicks          int64   `gorm:"not null;default:0" json:"clicks"`
	Spend           float64 `gorm:"not null;default:0" json:"spend"`
	Conversions     float64 `gorm:"not null;default:0" json:"conversions"`
	ConversionValue float64 `gorm:"not null;default:0" json:"conversion_value"`

	// Derived ratios, computed at normalization and never NaN/Inf
	CTR            float64 `gorm:"not null;default:0" json:"ctr"`
	CostPerClick   float64 `gorm:"not null;default:0" json:"cost_per_click"`
	CPA            float64 `gorm:"not null;default:0" json:"cpa"`
	ROAS           float64 `gorm:"not null;default:0" json:"roas"`
	ConversionRate float64 `gorm:"not null;default:0" json:"conversion_rate"`

	WindowStart time.Time  `gorm:"not null" json:"window_start"`
	WindowEnd   time.Time  `gorm:"not null" json:"window_end"`
	SyncedAt    time.Time  `gorm:"not null" json:"synced_at"`
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Relations
	Company      *Company      `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	OAuthAccount *OAuthAccount `gorm:"foreignKey:OAuthAccountID;references:ID" json:"oauth_account,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Channel == "" {
		c.Channel = ChannelOther
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// KPIValue returns the campaign's value for the given KPI and whether the
// campaign has a meaningful value for it. A campaign with zero impressions has
// no CTR; zero clicks no CPC/CVR; zero conversions no CPA; zero spend no ROAS.
func (c *Campaign) KPIValue(kpi KPIType) (float64, bool) {
	switch kpi {
	case KPICTR:
		return c.CTR, c.Impressions > 0 && c.Clicks > 0
	case KPICPC:
		return c.CostPerClick, c.Clicks > 0 && c.Spend > 0
	case KPICPA:
		return c.CPA, c.Conversions > 0 && c.Spend > 0
	case KPIROAS:
		return c.ROAS, c.Spend > 0 && c.ConversionValue > 0
	case KPICVR:
		return c.ConversionRate, c.Clicks > 0 && c.Conversions > 0
	case KPICPM:
		if c.Impressions > 0 && c.Spend > 0 {
			return c.Spend / float64(c.Impressions) * 1000, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID             *uint         `json:"id,omitempty"`
	UUID           *uuid.UUID    `json:"uuid,omitempty"`
	ExternalID     *string       `json:"external_id,omitempty"`
	Provider       *ProviderType `json:"provider,omitempty"`
	CompanyID      *uint         `json:"company_id,omitempty"`
	OAuthAccountID *uint         `json:"oauth_account_id,omitempty"`
	Channel        *ChannelType  `json:"channel,omitempty"`
	SyncedAfter    *time.Time    `json:"synced_after,omitempty"`
	SyncedBefore   *time.Time    `json:"synced_before,omitempty"`
}
