package repository

import (
	"context"

	"github.com/benchmetrics/compscore/models"
	"gorm.io/gorm"
)

// BenchmarkRepositoryImpl implements the BenchmarkRepository interface.
// Benchmarks are read-only reference data from this service's point of view;
// Save/SaveBatch exist for fixtures and the external refresh pipeline.
type BenchmarkRepositoryImpl struct {
	*BaseRepository[models.Benchmark, models.BenchmarkFilter]
}

// NewBenchmarkRepository creates a new benchmark repository
func NewBenchmarkRepository(db *gorm.DB) BenchmarkRepository {
	return &BenchmarkRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Benchmark, models.BenchmarkFilter](db),
	}
}

// ByPlatform retrieves all benchmark rows for one platform, case-insensitively
func (r *BenchmarkRepositoryImpl) ByPlatform(ctx context.Context, platform string) ([]*models.Benchmark, error) {
	db := r.getDB(ctx)

	var benchmarks []*models.Benchmark
	err := db.Where("LOWER(platform) = LOWER(?)", platform).
		Order("industry ASC, kpi ASC").
		Find(&benchmarks).Error
	if err != nil {
		return nil, err
	}

	return benchmarks, nil
}

// ByFilter retrieves benchmarks based on filter criteria
func (r *BenchmarkRepositoryImpl) ByFilter(ctx context.Context, filter models.BenchmarkFilter, orderBy string, limit, offset int) ([]*models.Benchmark, error) {
	db := r.getDB(ctx)

	var benchmarks []*models.Benchmark
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

	err := query.Find(&benchmarks).Error
	if err != nil {
		return nil, err
	}

	return benchmarks, nil
}

// Count returns the number of benchmarks matching the filter
func (r *BenchmarkRepositoryImpl) Count(ctx context.Context, filter models.BenchmarkFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var benchmark models.Benchmark
	err := r.applyFilter(db.Model(&benchmark), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any benchmark matching the filter exists
func (r *BenchmarkRepositoryImpl) Exists(ctx context.Context, filter models.BenchmarkFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *BenchmarkRepositoryImpl) applyFilter(db *gorm.DB, filter models.BenchmarkFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Platform != nil {
		db = db.Where("LOWER(platform) = LOWER(?)", *filter.Platform)
	}
	if filter.Industry != nil {
		db = db.Where("industry ILIKE ?", "%"+*filter.Industry+"%")
	}
	if filter.KPI != nil {
		db = db.Where("kpi = ?", *filter.KPI)
	}

	return db
}
