// Package testing provides test utilities and database setup for testing the benchmark platform
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// GenerateSecureToken creates a random URL-safe token for use as a fake OAuth credential
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestCompany creates a test company with an industry classification
func (tf *TestFixtures) CreateTestCompany() (*models.Company, error) {
	domain := "E-commerce"
	category := "Retail"
	subcategory := "Apparel"

	company := &models.Company{
		UUID:                uuid.New(),
		Name:                fmt.Sprintf("Test Company %d", mrand.Intn(10000000)),
		IndustryDomain:      &domain,
		IndustryCategory:    &category,
		IndustrySubcategory: &subcategory,
		Keywords:            pq.StringArray{"ecommerce", "retail"},
		IsActive:            utils.ToPtr(true),
	}

	err := tf.DB.DB.Create(company).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}

	return company, nil
}

// CreateTestCompanyWithoutIndustry creates a company with no industry classification set
func (tf *TestFixtures) CreateTestCompanyWithoutIndustry() (*models.Company, error) {
	company := &models.Company{
		UUID:     uuid.New(),
		Name:     fmt.Sprintf("Unclassified Company %d", mrand.Intn(10000000)),
		IsActive: utils.ToPtr(true),
	}

	err := tf.DB.DB.Create(company).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}

	return company, nil
}

// CreateTestOAuthAccount creates an active OAuth connection for the given company
func (tf *TestFixtures) CreateTestOAuthAccount(userID, companyID uint, provider models.ProviderType) (*models.OAuthAccount, error) {
	accessToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	account := &models.OAuthAccount{
		UUID:         uuid.New(),
		UserID:       userID,
		CompanyID:    companyID,
		Provider:     provider,
		AccountID:    fmt.Sprintf("act_%d", mrand.Intn(100000000)),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    utils.UTCNow().Add(1 * time.Hour),
		Status:       models.OAuthAccountStatusActive,
	}

	err = tf.DB.DB.Create(account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test OAuth account: %w", err)
	}

	return account, nil
}

// CreateExpiredOAuthAccount creates an OAuth connection whose access token already expired
func (tf *TestFixtures) CreateExpiredOAuthAccount(userID, companyID uint, provider models.ProviderType) (*models.OAuthAccount, error) {
	account, err := tf.CreateTestOAuthAccount(userID, companyID, provider)
	if err != nil {
		return nil, err
	}

	account.ExpiresAt = utils.UTCNow().Add(-1 * time.Hour) // Expired 1 hour ago
	err = tf.DB.DB.Save(account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to expire test OAuth account: %w", err)
	}

	return account, nil
}

// CreateTestCampaign creates a campaign with normalized metrics for the given account
func (tf *TestFixtures) CreateTestCampaign(account *models.OAuthAccount, channel models.ChannelType) (*models.Campaign, error) {
	now := utils.UTCNow()

	campaign := &models.Campaign{
		UUID:           uuid.New(),
		ExternalID:     fmt.Sprintf("cmp_%d", mrand.Intn(100000000)),
		Provider:       account.Provider,
		CompanyID:      account.CompanyID,
		OAuthAccountID: account.ID,
		Name:           fmt.Sprintf("Test Campaign %d", mrand.Intn(10000)),
		Channel:        channel,
		Status:         "active",

		Impressions:     100000,
		Clicks:          2000,
		Spend:           500.0,
		Conversions:     50.0,
		ConversionValue: 1500.0,

		CTR:            2.0,
		CostPerClick:   0.25,
		CPA:            10.0,
		ROAS:           3.0,
		ConversionRate: 2.5,

		WindowStart: now.AddDate(0, 0, -30),
		WindowEnd:   now,
		SyncedAt:    now,
	}

	err := tf.DB.DB.Create(campaign).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestComparison creates a benchmark comparison row linking a campaign to a benchmark
func (tf *TestFixtures) CreateTestComparison(campaign *models.Campaign, benchmark *models.Benchmark, userValue float64, percentile, score int) (*models.BenchmarkComparison, error) {
	comparison := &models.BenchmarkComparison{
		CompanyID:           campaign.CompanyID,
		CampaignID:          campaign.ID,
		BenchmarkID:         benchmark.ID,
		KPI:                 benchmark.KPI,
		UserValue:           userValue,
		BenchmarkPercentile: percentile,
		PerformanceScore:    score,
	}

	err := tf.DB.DB.Create(comparison).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test comparison: %w", err)
	}

	return comparison, nil
}

// CreateTestSyncLog creates a completed sync log entry
func (tf *TestFixtures) CreateTestSyncLog(userID, companyID uint, provider models.ProviderType, status models.SyncStatus) (*models.SyncLog, error) {
	now := utils.UTCNow()

	syncLog := &models.SyncLog{
		UUID:          uuid.New(),
		UserID:        userID,
		CompanyID:     companyID,
		Provider:      provider,
		JobType:       models.SyncJobManual,
		Status:        status,
		RecordsSynced: 10,
		StartedAt:     now.Add(-1 * time.Minute),
	}

	if status != models.SyncStatusRunning {
		syncLog.CompletedAt = &now
	}

	err := tf.DB.DB.Create(syncLog).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test sync log: %w", err)
	}

	return syncLog, nil
}
