package repository

import (
	"context"

	"github.com/benchmetrics/compscore/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BenchmarkComparisonRepositoryImpl implements the BenchmarkComparisonRepository interface
type BenchmarkComparisonRepositoryImpl struct {
	*BaseRepository[models.BenchmarkComparison, models.BenchmarkComparisonFilter]
}

// NewBenchmarkComparisonRepository creates a new benchmark comparison repository
func NewBenchmarkComparisonRepository(db *gorm.DB) BenchmarkComparisonRepository {
	return &BenchmarkComparisonRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BenchmarkComparison, models.BenchmarkComparisonFilter](db),
	}
}

// ByCampaignID retrieves all comparisons for one campaign
func (r *BenchmarkComparisonRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.BenchmarkComparison, error) {
	filter := models.BenchmarkComparisonFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "kpi ASC", 0, 0)
}

// ByCompanyID retrieves comparisons for a company with pagination
func (r *BenchmarkComparisonRepositoryImpl) ByCompanyID(ctx context.Context, companyID uint, limit, offset int) ([]*models.BenchmarkComparison, error) {
	filter := models.BenchmarkComparisonFilter{CompanyID: &companyID}
	return r.ByFilter(ctx, filter, "campaign_id ASC, kpi ASC", limit, offset)
}

// UpsertBatch inserts or overwrites comparisons keyed by
// (company_id, campaign_id, benchmark_id)
func (r *BenchmarkComparisonRepositoryImpl) UpsertBatch(ctx context.Context, comparisons []*models.BenchmarkComparison) error {
	if len(comparisons) == 0 {
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
			{Name: "company_id"},
			{Name: "campaign_id"},
			{Name: "benchmark_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"kpi", "user_value", "benchmark_percentile", "performance_score", "updated_at",
		}),
	}).CreateInBatches(comparisons, 100).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves comparisons based on filter criteria
func (r *BenchmarkComparisonRepositoryImpl) ByFilter(ctx context.Context, filter models.BenchmarkComparisonFilter, orderBy string, limit, offset int) ([]*models.BenchmarkComparison, error) {
	db := r.getDB(ctx)

	var comparisons []*models.BenchmarkComparison
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

	query = query.Preload("Benchmark").Preload("Campaign")

	err := query.Find(&comparisons).Error
	if err != nil {
		return nil, err
	}

	return comparisons, nil
}

// Count returns the number of comparisons matching the filter
func (r *BenchmarkComparisonRepositoryImpl) Count(ctx context.Context, filter models.BenchmarkComparisonFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var comparison models.BenchmarkComparison
	err := r.applyFilter(db.Model(&comparison), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any comparison matching the filter exists
func (r *BenchmarkComparisonRepositoryImpl) Exists(ctx context.Context, filter models.BenchmarkComparisonFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *BenchmarkComparisonRepositoryImpl) applyFilter(db *gorm.DB, filter models.BenchmarkComparisonFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.BenchmarkID != nil {
		db = db.Where("benchmark_id = ?", *filter.BenchmarkID)
	}
	if filter.KPI != nil {
		db = db.Where("kpi = ?", *filter.KPI)
	}

	return db
}
