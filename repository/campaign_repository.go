package repository

import (
	"context"

	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Campaign, error) {
	parsed, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, err
	}

	filter := models.CampaignFilter{UUID: &parsed}
	campaigns, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(campaigns) == 0 {
		return nil, nil
	}

	return campaigns[0], nil
}

// ByCompanyID retrieves campaigns by company ID with pagination
func (r *CampaignRepositoryImpl) ByCompanyID(ctx context.Context, companyID uint, limit, offset int) ([]*models.Campaign, error) {
	filter := models.CampaignFilter{CompanyID: &companyID}
	return r.ByFilter(ctx, filter, "synced_at DESC", limit, offset)
}

// UpsertBatch inserts or overwrites campaigns keyed by
// (external_id, provider, company_id). Metrics of an existing row are replaced
// wholesale; a re-sync with identical provider responses is a no-op in terms of
// row count.
func (r *CampaignRepositoryImpl) UpsertBatch(ctx context.Context, campaigns []*models.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "external_id"},
			{Name: "provider"},
			{Name: "company_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "channel", "status",
			"impressions", "clicks", "spend", "conversions", "conversion_value",
			"ctr", "cost_per_click", "cpa", "roas", "conversion_rate",
			"window_start", "window_end", "synced_at", "updated_at",
		}),
	}).CreateInBatches(campaigns, 100).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var campaign models.Campaign
	err := r.applyFilter(db.Model(&campaign), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any campaign matching the filter exists
func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.ExternalID != nil {
		db = db.Where("external_id = ?", *filter.ExternalID)
	}
	if filter.Provider != nil {
		db = db.Where("provider = ?", *filter.Provider)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.OAuthAccountID != nil {
		db = db.Where("oauth_account_id = ?", *filter.OAuthAccountID)
	}
	if filter.Channel != nil {
		db = db.Where("channel = ?", *filter.Channel)
	}
	if filter.SyncedAfter != nil {
		db = db.Where("synced_at >= ?", utils.TimeToUTC(*filter.SyncedAfter))
	}
	if filter.SyncedBefore != nil {
		db = db.Where("synced_at < ?", utils.TimeToUTC(*filter.SyncedBefore))
	}

	return db
}
