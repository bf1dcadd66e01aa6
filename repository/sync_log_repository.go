package repository

import (
	"context"

	"github.com/benchmetrics/compscore/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncLogRepositoryImpl implements the SyncLogRepository interface
type SyncLogRepositoryImpl struct {
	*BaseRepository[models.SyncLog, models.SyncLogFilter]
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &SyncLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SyncLog, models.SyncLogFilter](db),
	}
}

// ByUUID retrieves a sync log by its UUID
func (r *SyncLogRepositoryImpl) ByUUID(ctx context.Context, logUUID string) (*models.SyncLog, error) {
	parsed, err := uuid.Parse(logUUID)
	if err != nil {
		return nil, err
	}

	filter := models.SyncLogFilter{UUID: &parsed}
	logs, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(logs) == 0 {
		return nil, nil
	}

	return logs[0], nil
}

// Update persists changes to an existing sync log row in place
func (r *SyncLogRepositoryImpl) Update(ctx context.Context, log *models.SyncLog) error {
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

	err = db.Save(log).Error
	if err != nil {
		return err
	}

	return nil
}

// ListByUser retrieves sync logs for a user, newest first
func (r *SyncLogRepositoryImpl) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.SyncLog, error) {
	filter := models.SyncLogFilter{UserID: &userID}
	return r.ByFilter(ctx, filter, "started_at DESC", limit, offset)
}

// ByFilter retrieves sync logs based on filter criteria
func (r *SyncLogRepositoryImpl) ByFilter(ctx context.Context, filter models.SyncLogFilter, orderBy string, limit, offset int) ([]*models.SyncLog, error) {
	db := r.getDB(ctx)

	var logs []*models.SyncLog
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

	err := query.Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// Count returns the number of sync logs matching the filter
func (r *SyncLogRepositoryImpl) Count(ctx context.Context, filter models.SyncLogFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var log models.SyncLog
	err := r.applyFilter(db.Model(&log), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any sync log matching the filter exists
func (r *SyncLogRepositoryImpl) Exists(ctx context.Context, filter models.SyncLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *SyncLogRepositoryImpl) applyFilter(db *gorm.DB, filter models.SyncLogFilter) *gorm.DB {
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
	if filter.JobType != nil {
		db = db.Where("job_type = ?", *filter.JobType)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.StartedAfter != nil {
		db = db.Where("started_at >= ?", *filter.StartedAfter)
	}
	if filter.StartedBefore != nil {
		db = db.Where("started_at <= ?", *filter.StartedBefore)
	}

	return db
}
