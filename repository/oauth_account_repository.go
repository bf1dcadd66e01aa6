package repository

import (
	"context"
	"time"

	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OAuthAccountRepositoryImpl implements the OAuthAccountRepository interface
type OAuthAccountRepositoryImpl struct {
	*BaseRepository[models.OAuthAccount, models.OAuthAccountFilter]
}

// NewOAuthAccountRepository creates a new OAuth account repository
func NewOAuthAccountRepository(db *gorm.DB) OAuthAccountRepository {
	return &OAuthAccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OAuthAccount, models.OAuthAccountFilter](db),
	}
}

// ByUUID retrieves an OAuth account by UUID
func (r *OAuthAccountRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.OAuthAccount, error) {
	parsed, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, err
	}

	filter := models.OAuthAccountFilter{UUID: &parsed}
	accounts, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, nil
	}

	return accounts[0], nil
}

// ActiveByUserAndProvider retrieves the single active connection for a (user, provider)
func (r *OAuthAccountRepositoryImpl) ActiveByUserAndProvider(ctx context.Context, userID uint, provider models.ProviderType) (*models.OAuthAccount, error) {
	status := models.OAuthAccountStatusActive
	filter := models.OAuthAccountFilter{
		UserID:   &userID,
		Provider: &provider,
		Status:   &status,
	}
	accounts, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, nil
	}

	return accounts[0], nil
}

// ListActive retrieves all active connections, for the scheduled delta job
func (r *OAuthAccountRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*models.OAuthAccount, error) {
	status := models.OAuthAccountStatusActive
	filter := models.OAuthAccountFilter{Status: &status}
	return r.ByFilter(ctx, filter, "id ASC", limit, offset)
}

// UpdateToken overwrites the stored access token and expiry after a refresh
func (r *OAuthAccountRepositoryImpl) UpdateToken(ctx context.Context, id uint, accessToken string, expiresAt time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.OAuthAccount{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"access_token": accessToken,
			"expires_at":   expiresAt,
			"updated_at":   utils.UTCNow(),
		}).Error
}

// UpdateStatus updates only the status of a connection
func (r *OAuthAccountRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.OAuthAccountStatus) error {
	db := r.getDB(ctx)
	return db.Model(&models.OAuthAccount{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		}).Error
}

// MarkSynced records the completion time of the last successful sync
func (r *OAuthAccountRepositoryImpl) MarkSynced(ctx context.Context, id uint, syncedAt time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.OAuthAccount{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_synced_at": syncedAt,
			"updated_at":     utils.UTCNow(),
		}).Error
}

// DemoteActive marks any existing active row for the (user, provider) as
// disconnected so a reconnect can insert a fresh active row without violating
// the one-active-per-pair invariant.
func (r *OAuthAccountRepositoryImpl) DemoteActive(ctx context.Context, userID uint, provider models.ProviderType) error {
	db := r.getDB(ctx)
	return db.Model(&models.OAuthAccount{}).
		Where("user_id = ? AND provider = ? AND status = ?", userID, provider, models.OAuthAccountStatusActive).
		Updates(map[string]any{
			"status":     models.OAuthAccountStatusDisconnected,
			"updated_at": utils.UTCNow(),
		}).Error
}

// ByFilter retrieves OAuth accounts based on filter criteria
func (r *OAuthAccountRepositoryImpl) ByFilter(ctx context.Context, filter models.OAuthAccountFilter, orderBy string, limit, offset int) ([]*models.OAuthAccount, error) {
	db := r.getDB(ctx)

	var accounts []*models.OAuthAccount
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

	query = query.Preload("Company")

	err := query.Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// Count returns the number of OAuth accounts matching the filter
func (r *OAuthAccountRepositoryImpl) Count(ctx context.Context, filter models.OAuthAccountFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var account models.OAuthAccount
	err := r.applyFilter(db.Model(&account), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any OAuth account matching the filter exists
func (r *OAuthAccountRepositoryImpl) Exists(ctx context.Context, filter models.OAuthAccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *OAuthAccountRepositoryImpl) applyFilter(db *gorm.DB, filter models.OAuthAccountFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Provider != nil {
		db = db.Where("provider = ?", *filter.Provider)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	return db
}
