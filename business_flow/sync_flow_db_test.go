package businessflow_test

import (
	"context"
	"errors"
	"testing"

	businessflow "github.com/benchmetrics/compscore/business_flow"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/app/scheduler"
	"github.com/benchmetrics/compscore/app/services"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	testingutil "github.com/benchmetrics/compscore/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	provider models.ProviderType
	records  []services.RawCampaignRecord
	err      error
}

func (s *stubFetcher) Provider() models.ProviderType { return s.provider }

func (s *stubFetcher) FetchCampaigns(ctx context.Context, accessToken, accountID string, window services.DateWindow) ([]services.RawCampaignRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubRefresher struct{}

func (s *stubRefresher) Refresh(ctx context.Context, provider models.ProviderType, refreshToken string) (*services.RefreshedToken, error) {
	return nil, errors.New("refresh not expected in this test")
}

func newTestSyncFlow(testDB *testingutil.TestDB, fetcher services.PlatformFetcher) businessflow.SyncFlow {
	companyRepo := repository.NewCompanyRepository(testDB.DB)
	accountRepo := repository.NewOAuthAccountRepository(testDB.DB)
	campaignRepo := repository.NewCampaignRepository(testDB.DB)
	comparisonRepo := repository.NewBenchmarkComparisonRepository(testDB.DB)
	syncLogRepo := repository.NewSyncLogRepository(testDB.DB)
	benchmarkRepo := repository.NewBenchmarkRepository(testDB.DB)

	benchmarks := scheduler.NewBenchmarkCache(benchmarkRepo, nil, "test:", 0, nil)

	fetchers := map[models.ProviderType]services.PlatformFetcher{
		fetcher.Provider(): fetcher,
	}

	orchestrator := scheduler.NewSyncOrchestrator(
		companyRepo, accountRepo, campaignRepo, comparisonRepo, syncLogRepo,
		benchmarks, &stubRefresher{}, fetchers, testDB.DB, nil,
	)

	return businessflow.NewSyncFlow(orchestrator, syncLogRepo, nil)
}

func TestSyncFlowTriggerSync(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		_, err = fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderGoogleAds)
		require.NoError(t, err)

		// Platform must match the provider's display name for benchmarks to apply
		benchmarks, err := testDB.SeedTestBenchmarks("E-commerce > Retail > Apparel", "Google Ads", "Search")
		require.NoError(t, err)
		require.NotEmpty(t, benchmarks)

		fetcher := &stubFetcher{
			provider: models.ProviderGoogleAds,
			records: []services.RawCampaignRecord{
				{
					ExternalID:      "cmp-100",
					Name:            "Spring Sale",
					Status:          "ENABLED",
					Channel:         models.ChannelSearch,
					Impressions:     100000,
					Clicks:          2000,
					Spend:           500,
					Conversions:     50,
					ConversionValue: 1500,
				},
				{
					ExternalID:  "cmp-101",
					Name:        "Brand Awareness",
					Status:      "ENABLED",
					Channel:     models.ChannelDisplay,
					Impressions: 50000,
					Clicks:      400,
					Spend:       120,
				},
			},
		}
		flow := newTestSyncFlow(testDB, fetcher)

		t.Run("ManualSyncPersistsCampaignsAndComparisons", func(t *testing.T) {
			resp, err := flow.TriggerSync(ctx, &dto.TriggerSyncRequest{
				UserID:    1,
				CompanyID: company.ID,
				Provider:  "google_ads",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Sync completed successfully", resp.Message)
			assert.Equal(t, string(models.SyncStatusCompleted), resp.SyncLog.Status)
			assert.Equal(t, 2, resp.SyncLog.RecordsSynced)
			require.NotNil(t, resp.SyncLog.CompletedAt)

			campaignRepo := repository.NewCampaignRepository(testDB.DB)
			campaigns, err := campaignRepo.ByCompanyID(ctx, company.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, campaigns, 2)

			byExternal := make(map[string]*models.Campaign)
			for _, c := range campaigns {
				byExternal[c.ExternalID] = c
			}

			spring := byExternal["cmp-100"]
			require.NotNil(t, spring)
			assert.Equal(t, "Spring Sale", spring.Name)
			assert.InDelta(t, 2.0, spring.CTR, 1e-9)
			assert.InDelta(t, 0.25, spring.CostPerClick, 1e-9)
			assert.InDelta(t, 10.0, spring.CPA, 1e-9)
			assert.InDelta(t, 3.0, spring.ROAS, 1e-9)

			// Zero conversions fall back to the spend itself, never NaN or Inf
			brand := byExternal["cmp-101"]
			require.NotNil(t, brand)
			assert.InDelta(t, 120.0, brand.CPA, 1e-9)
			assert.Zero(t, brand.ROAS)

			comparisonRepo := repository.NewBenchmarkComparisonRepository(testDB.DB)
			comparisons, err := comparisonRepo.ByCompanyID(ctx, company.ID, 0, 0)
			require.NoError(t, err)
			assert.NotEmpty(t, comparisons)
			for _, cmp := range comparisons {
				assert.Contains(t, []int{25, 50, 75, 90}, cmp.BenchmarkPercentile)
				assert.Contains(t, []int{30, 50, 70, 90}, cmp.PerformanceScore)
			}
		})

		t.Run("RerunUpsertsWithoutDuplicates", func(t *testing.T) {
			_, err := flow.TriggerSync(ctx, &dto.TriggerSyncRequest{
				UserID:    1,
				CompanyID: company.ID,
				Provider:  "google_ads",
			}, metadata)
			require.NoError(t, err)

			campaignRepo := repository.NewCampaignRepository(testDB.DB)
			count, err := campaignRepo.Count(ctx, models.CampaignFilter{CompanyID: &company.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("NoSyncableAccount", func(t *testing.T) {
			_, err := flow.TriggerSync(ctx, &dto.TriggerSyncRequest{
				UserID:    999,
				CompanyID: company.ID,
				Provider:  "google_ads",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountNotSyncable(err))
		})

		t.Run("InvalidJobType", func(t *testing.T) {
			_, err := flow.TriggerSync(ctx, &dto.TriggerSyncRequest{
				UserID:    1,
				CompanyID: company.ID,
				Provider:  "google_ads",
				JobType:   "hourly",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidJobType(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSyncFlowTriggerSyncSurfacesFailedLog(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		_, err = fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderMetaAds)
		require.NoError(t, err)

		fetcher := &stubFetcher{
			provider: models.ProviderMetaAds,
			err:      errors.New("provider returned 503"),
		}
		flow := newTestSyncFlow(testDB, fetcher)

		resp, err := flow.TriggerSync(ctx, &dto.TriggerSyncRequest{
			UserID:    1,
			CompanyID: company.ID,
			Provider:  "meta_ads",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, "Sync finished with errors", resp.Message)
		assert.Equal(t, string(models.SyncStatusFailed), resp.SyncLog.Status)
		assert.NotEmpty(t, resp.SyncLog.Message)
		require.NotNil(t, resp.SyncLog.CompletedAt)

		return nil
	})
	require.NoError(t, err)
}

func TestSyncFlowListSyncLogs(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		syncLogRepo := repository.NewSyncLogRepository(testDB.DB)
		flow := businessflow.NewSyncFlow(nil, syncLogRepo, nil)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err := fixtures.CreateTestSyncLog(3, company.ID, models.ProviderGoogleAds, models.SyncStatusCompleted)
			require.NoError(t, err)
		}

		t.Run("DefaultsAndTotal", func(t *testing.T) {
			resp, err := flow.ListSyncLogs(ctx, &dto.ListSyncLogsRequest{UserID: 3}, metadata)
			require.NoError(t, err)
			assert.Len(t, resp.Items, 5)
			assert.Equal(t, int64(5), resp.Total)
			assert.Equal(t, 1, resp.Page)
		})

		t.Run("Paged", func(t *testing.T) {
			resp, err := flow.ListSyncLogs(ctx, &dto.ListSyncLogsRequest{UserID: 3, Page: 2, PageSize: 2}, metadata)
			require.NoError(t, err)
			assert.Len(t, resp.Items, 2)
			assert.Equal(t, int64(5), resp.Total)
			assert.Equal(t, 2, resp.Page)
		})

		t.Run("InvalidPage", func(t *testing.T) {
			_, err := flow.ListSyncLogs(ctx, &dto.ListSyncLogsRequest{UserID: 3, Page: -1}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		return nil
	})
	require.NoError(t, err)
}
