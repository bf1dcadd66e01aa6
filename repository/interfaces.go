// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/benchmetrics/compscore/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CompanyRepository defines operations for companies
type CompanyRepository interface {
	Repository[models.Company, models.CompanyFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Company, error)
}

// OAuthAccountRepository defines operations for OAuth accounts
type OAuthAccountRepository interface {
	Repository[models.OAuthAccount, models.OAuthAccountFilter]
	ByUUID(ctx context.Context, uuid string) (*models.OAuthAccount, error)
	ActiveByUserAndProvider(ctx context.Context, userID uint, provider models.ProviderType) (*models.OAuthAccount, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.OAuthAccount, error)
	UpdateToken(ctx context.Context, id uint, accessToken string, expiresAt time.Time) error
	UpdateStatus(ctx context.Context, id uint, status models.OAuthAccountStatus) error
	MarkSynced(ctx context.Context, id uint, syncedAt time.Time) error
	DemoteActive(ctx context.Context, userID uint, provider models.ProviderType) error
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ByCompanyID(ctx context.Context, companyID uint, limit, offset int) ([]*models.Campaign, error)
	UpsertBatch(ctx context.Context, campaigns []*models.Campaign) error
}

// BenchmarkRepository defines operations for benchmark reference data
type BenchmarkRepository interface {
	Repository[models.Benchmark, models.BenchmarkFilter]
	ByPlatform(ctx context.Context, platform string) ([]*models.Benchmark, error)
}

// BenchmarkComparisonRepository defines operations for benchmark comparisons
type BenchmarkComparisonRepository interface {
	Repository[models.BenchmarkComparison, models.BenchmarkComparisonFilter]
	ByCampaignID(ctx context.Context, campaignID uint) ([]*models.BenchmarkComparison, error)
	ByCompanyID(ctx context.Context, companyID uint, limit, offset int) ([]*models.BenchmarkComparison, error)
	UpsertBatch(ctx context.Context, comparisons []*models.BenchmarkComparison) error
}

// SyncLogRepository defines operations for sync logs
type SyncLogRepository interface {
	Repository[models.SyncLog, models.SyncLogFilter]
	ByUUID(ctx context.Context, uuid string) (*models.SyncLog, error)
	Update(ctx context.Context, log *models.SyncLog) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.SyncLog, error)
}
