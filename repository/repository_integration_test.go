// Package repository_test contains database-backed tests for the repository layer
package repository_test

import (
	"testing"
	"time"

	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	testingutil "github.com/benchmetrics/compscore/testing"
	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCompanyRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndByID", func(t *testing.T) {
			company, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			assert.NotZero(t, company.ID)

			found, err := repo.ByID(ctx, company.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, company.Name, found.Name)
			assert.Equal(t, company.UUID, found.UUID)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			company, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, company)
		})

		t.Run("ByUUID", func(t *testing.T) {
			company, err := fixtures.CreateTestCompany()
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, company.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, company.ID, found.ID)
		})

		t.Run("ByUUIDNotFound", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, uuid.New().String())
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("IndustryLevels", func(t *testing.T) {
			company, err := fixtures.CreateTestCompany()
			require.NoError(t, err)
			assert.True(t, company.HasIndustry())

			bare, err := fixtures.CreateTestCompanyWithoutIndustry()
			require.NoError(t, err)
			assert.False(t, bare.HasIndustry())
		})

		t.Run("Count", func(t *testing.T) {
			count, err := repo.Count(ctx, models.CompanyFilter{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(1))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOAuthAccountRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewOAuthAccountRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("ActiveByUserAndProvider", func(t *testing.T) {
			account, err := fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderGoogleAds)
			require.NoError(t, err)

			found, err := repo.ActiveByUserAndProvider(ctx, 1, models.ProviderGoogleAds)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, account.ID, found.ID)
			assert.Equal(t, models.OAuthAccountStatusActive, found.Status)
		})

		t.Run("ActiveByUserAndProviderNotFound", func(t *testing.T) {
			found, err := repo.ActiveByUserAndProvider(ctx, 1, models.ProviderTikTokAds)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("DemoteActive", func(t *testing.T) {
			first, err := fixtures.CreateTestOAuthAccount(2, company.ID, models.ProviderMetaAds)
			require.NoError(t, err)

			err = repo.DemoteActive(ctx, 2, models.ProviderMetaAds)
			require.NoError(t, err)

			demoted, err := repo.ByID(ctx, first.ID)
			require.NoError(t, err)
			require.NotNil(t, demoted)
			assert.Equal(t, models.OAuthAccountStatusDisconnected, demoted.Status)

			// A reconnect can now insert a fresh active row
			second, err := fixtures.CreateTestOAuthAccount(2, company.ID, models.ProviderMetaAds)
			require.NoError(t, err)

			found, err := repo.ActiveByUserAndProvider(ctx, 2, models.ProviderMetaAds)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, second.ID, found.ID)
		})

		t.Run("UpdateToken", func(t *testing.T) {
			account, err := fixtures.CreateTestOAuthAccount(3, company.ID, models.ProviderLinkedInAds)
			require.NoError(t, err)

			newExpiry := utils.UTCNow().Add(2 * time.Hour)
			err = repo.UpdateToken(ctx, account.ID, "rotated-token", newExpiry)
			require.NoError(t, err)

			updated, err := repo.ByID(ctx, account.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, "rotated-token", updated.AccessToken)
			assert.WithinDuration(t, newExpiry, updated.ExpiresAt, time.Second)
			assert.NotNil(t, updated.UpdatedAt)
		})

		t.Run("MarkSynced", func(t *testing.T) {
			account, err := fixtures.CreateTestOAuthAccount(4, company.ID, models.ProviderTikTokAds)
			require.NoError(t, err)
			assert.Nil(t, account.LastSyncedAt)

			syncedAt := utils.UTCNow()
			err = repo.MarkSynced(ctx, account.ID, syncedAt)
			require.NoError(t, err)

			updated, err := repo.ByID(ctx, account.ID)
			require.NoError(t, err)
			require.NotNil(t, updated.LastSyncedAt)
			assert.WithinDuration(t, syncedAt, *updated.LastSyncedAt, time.Second)
		})

		t.Run("ListActive", func(t *testing.T) {
			accounts, err := repo.ListActive(ctx, 0, 0)
			require.NoError(t, err)
			for _, account := range accounts {
				assert.Equal(t, models.OAuthAccountStatusActive, account.Status)
			}
		})

		t.Run("IsSyncable", func(t *testing.T) {
			account, err := fixtures.CreateTestOAuthAccount(5, company.ID, models.ProviderGoogleAnalytics)
			require.NoError(t, err)
			assert.True(t, account.IsSyncable())

			err = repo.UpdateStatus(ctx, account.ID, models.OAuthAccountStatusError)
			require.NoError(t, err)

			updated, err := repo.ByID(ctx, account.ID)
			require.NoError(t, err)
			assert.False(t, updated.IsSyncable())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		account, err := fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderGoogleAds)
		require.NoError(t, err)

		t.Run("UpsertBatchInsertsAndUpdates", func(t *testing.T) {
			now := utils.UTCNow()
			campaign := &models.Campaign{
				UUID:           uuid.New(),
				ExternalID:     "cmp_upsert_1",
				Provider:       account.Provider,
				CompanyID:      company.ID,
				OAuthAccountID: account.ID,
				Name:           "Original Name",
				Channel:        models.ChannelSearch,
				Status:         "active",
				Impressions:    1000,
				Clicks:         50,
				Spend:          25.0,
				WindowStart:    now.AddDate(0, 0, -7),
				WindowEnd:      now,
				SyncedAt:       now,
			}

			err := repo.UpsertBatch(ctx, []*models.Campaign{campaign})
			require.NoError(t, err)
			assert.NotZero(t, campaign.ID)

			// Same external identity, newer metrics
			updatedAt := utils.UTCNow()
			update := &models.Campaign{
				UUID:           uuid.New(),
				ExternalID:     "cmp_upsert_1",
				Provider:       account.Provider,
				CompanyID:      company.ID,
				OAuthAccountID: account.ID,
				Name:           "Renamed Campaign",
				Channel:        models.ChannelSearch,
				Status:         "paused",
				Impressions:    2000,
				Clicks:         80,
				Spend:          40.0,
				WindowStart:    now.AddDate(0, 0, -7),
				WindowEnd:      now,
				SyncedAt:       updatedAt,
				UpdatedAt:      &updatedAt,
			}

			err = repo.UpsertBatch(ctx, []*models.Campaign{update})
			require.NoError(t, err)

			count, err := repo.Count(ctx, models.CampaignFilter{CompanyID: &company.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			stored, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "Renamed Campaign", stored.Name)
			assert.Equal(t, "paused", stored.Status)
			assert.Equal(t, int64(2000), stored.Impressions)
			// The original row identity survives the upsert
			assert.Equal(t, campaign.UUID, stored.UUID)
		})

		t.Run("ByUUID", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(account, models.ChannelSocial)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, campaign.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, campaign.ID, found.ID)
		})

		t.Run("ByCompanyID", func(t *testing.T) {
			campaigns, err := repo.ByCompanyID(ctx, company.ID, 0, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(campaigns), 2)
			for _, campaign := range campaigns {
				assert.Equal(t, company.ID, campaign.CompanyID)
			}
		})

		t.Run("ByFilterChannel", func(t *testing.T) {
			channel := models.ChannelSocial
			campaigns, err := repo.ByFilter(ctx, models.CampaignFilter{Channel: &channel}, "", 0, 0)
			require.NoError(t, err)
			require.NotEmpty(t, campaigns)
			for _, campaign := range campaigns {
				assert.Equal(t, models.ChannelSocial, campaign.Channel)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBenchmarkRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewBenchmarkRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		_, err := testDB.SeedTestBenchmarks("E-commerce > Retail", "google_ads", "Search")
		require.NoError(t, err)
		_, err = testDB.SeedTestBenchmarks("SaaS > B2B", "meta_ads", "Social")
		require.NoError(t, err)

		t.Run("ByPlatform", func(t *testing.T) {
			benchmarks, err := repo.ByPlatform(ctx, "google_ads")
			require.NoError(t, err)
			require.Len(t, benchmarks, 3)
			for _, benchmark := range benchmarks {
				assert.Equal(t, "google_ads", benchmark.Platform)
			}
		})

		t.Run("ByFilterKPI", func(t *testing.T) {
			kpi := models.KPICTR
			benchmarks, err := repo.ByFilter(ctx, models.BenchmarkFilter{KPI: &kpi}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, benchmarks, 2)
			for _, benchmark := range benchmarks {
				assert.Equal(t, models.KPICTR, benchmark.KPI)
			}
		})

		t.Run("MatchesIndustry", func(t *testing.T) {
			benchmarks, err := repo.ByPlatform(ctx, "google_ads")
			require.NoError(t, err)
			require.NotEmpty(t, benchmarks)

			assert.True(t, benchmarks[0].MatchesIndustry([]string{"Retail"}))
			assert.False(t, benchmarks[0].MatchesIndustry([]string{"Healthcare"}))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBenchmarkComparisonRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewBenchmarkComparisonRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		account, err := fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderGoogleAds)
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(account, models.ChannelSearch)
		require.NoError(t, err)

		benchmarks, err := testDB.SeedTestBenchmarks("E-commerce > Retail", "google_ads", "Search")
		require.NoError(t, err)

		t.Run("UpsertBatchOverwritesScores", func(t *testing.T) {
			comparison := &models.BenchmarkComparison{
				CompanyID:           company.ID,
				CampaignID:          campaign.ID,
				BenchmarkID:         benchmarks[0].ID,
				KPI:                 benchmarks[0].KPI,
				UserValue:           0.03,
				BenchmarkPercentile: 75,
				PerformanceScore:    60,
			}

			err := repo.UpsertBatch(ctx, []*models.BenchmarkComparison{comparison})
			require.NoError(t, err)

			// Re-score the same campaign against the same benchmark
			updatedAt := utils.UTCNow()
			rescored := &models.BenchmarkComparison{
				CompanyID:           company.ID,
				CampaignID:          campaign.ID,
				BenchmarkID:         benchmarks[0].ID,
				KPI:                 benchmarks[0].KPI,
				UserValue:           0.05,
				BenchmarkPercentile: 90,
				PerformanceScore:    90,
				UpdatedAt:           &updatedAt,
			}

			err = repo.UpsertBatch(ctx, []*models.BenchmarkComparison{rescored})
			require.NoError(t, err)

			count, err := repo.Count(ctx, models.BenchmarkComparisonFilter{CampaignID: &campaign.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			stored, err := repo.ByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Equal(t, 0.05, stored[0].UserValue)
			assert.Equal(t, 90, stored[0].BenchmarkPercentile)
		})

		t.Run("ByCampaignIDPreloadsRelations", func(t *testing.T) {
			stored, err := repo.ByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			require.NotEmpty(t, stored)

			require.NotNil(t, stored[0].Campaign)
			assert.Equal(t, campaign.Name, stored[0].Campaign.Name)
			require.NotNil(t, stored[0].Benchmark)
			assert.Equal(t, benchmarks[0].KPI, stored[0].Benchmark.KPI)
		})

		t.Run("ByCompanyID", func(t *testing.T) {
			stored, err := repo.ByCompanyID(ctx, company.ID, 0, 0)
			require.NoError(t, err)
			require.NotEmpty(t, stored)
			for _, comparison := range stored {
				assert.Equal(t, company.ID, comparison.CompanyID)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSyncLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSyncLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("SaveAndByUUID", func(t *testing.T) {
			syncLog, err := fixtures.CreateTestSyncLog(1, company.ID, models.ProviderGoogleAds, models.SyncStatusCompleted)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, syncLog.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, models.SyncStatusCompleted, found.Status)
			assert.True(t, found.IsTerminal())
		})

		t.Run("UpdateTransitionsStatus", func(t *testing.T) {
			syncLog, err := fixtures.CreateTestSyncLog(2, company.ID, models.ProviderMetaAds, models.SyncStatusRunning)
			require.NoError(t, err)
			assert.False(t, syncLog.IsTerminal())

			completedAt := utils.UTCNow()
			syncLog.Status = models.SyncStatusFailed
			syncLog.Message = "provider request timed out"
			syncLog.CompletedAt = &completedAt

			err = repo.Update(ctx, syncLog)
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, syncLog.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, models.SyncStatusFailed, found.Status)
			assert.Equal(t, "provider request timed out", found.Message)
			require.NotNil(t, found.CompletedAt)
		})

		t.Run("ListByUser", func(t *testing.T) {
			for i := 0; i < 3; i++ {
				_, err := fixtures.CreateTestSyncLog(7, company.ID, models.ProviderGoogleAds, models.SyncStatusCompleted)
				require.NoError(t, err)
			}

			logs, err := repo.ListByUser(ctx, 7, 2, 0)
			require.NoError(t, err)
			assert.Len(t, logs, 2)
			for _, entry := range logs {
				assert.Equal(t, uint(7), entry.UserID)
			}
		})

		return nil
	})
	require.NoError(t, err)
}
