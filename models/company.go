package models

import (
	"time"

	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Company represents a customer team that owns platform connections and campaigns.
// The industry classification drives benchmark matching; all three levels are
// optional and a company without any of them is simply never matched.
type Company struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UUID                uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_companies_uuid" json:"uuid"`
	Name                string         `gorm:"size:255;not null" json:"name"`
	IndustryDomain      *string        `gorm:"size:255" json:"industry_domain,omitempty"`
	IndustryCategory    *string        `gorm:"size:255" json:"industry_category,omitempty"`
	IndustrySubcategory *string        `gorm:"size:255" json:"industry_subcategory,omitempty"`
	Keywords            pq.StringArray `gorm:"type:text[]" json:"keywords,omitempty"`
	IsActive            *bool          `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Company) TableName() string {
	return "companies"
}

// BeforeCreate is called before creating a new record
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Company) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IndustryLevels returns the non-empty classification levels, most specific last
func (c *Company) IndustryLevels() []string {
	var levels []string
	for _, l := range []*string{c.IndustryDomain, c.IndustryCategory, c.IndustrySubcategory} {
		if l != nil && *l != "" {
			levels = append(levels, *l)
		}
	}
	return levels
}

// HasIndustry checks if any classification level is recorded
func (c *Company) HasIndustry() bool {
	return len(c.IndustryLevels()) > 0
}

// CompanyFilter represents filter criteria for companies
type CompanyFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Name     *string    `json:"name,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}
