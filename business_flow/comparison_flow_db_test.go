package businessflow_test

import (
	"bytes"
	"testing"

	businessflow "github.com/benchmetrics/compscore/business_flow"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	testingutil "github.com/benchmetrics/compscore/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestComparisonFlowListComparisons(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		comparisonRepo := repository.NewBenchmarkComparisonRepository(testDB.DB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		flow := businessflow.NewComparisonFlow(comparisonRepo, campaignRepo)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		account, err := fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderGoogleAds)
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(account, models.ChannelSearch)
		require.NoError(t, err)

		benchmarks, err := testDB.SeedTestBenchmarks("E-commerce > Retail", "google_ads", "Search")
		require.NoError(t, err)

		_, err = fixtures.CreateTestComparison(campaign, benchmarks[0], 0.03, 75, 60)
		require.NoError(t, err)
		_, err = fixtures.CreateTestComparison(campaign, benchmarks[1], 9.0, 90, 90)
		require.NoError(t, err)

		t.Run("ByCampaign", func(t *testing.T) {
			resp, err := flow.ListComparisons(ctx, &dto.ListComparisonsRequest{
				UserID:       1,
				CompanyID:    company.ID,
				CampaignUUID: campaign.UUID.String(),
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Items, 2)
			assert.Equal(t, int64(2), resp.Total)

			for _, item := range resp.Items {
				assert.Equal(t, campaign.UUID.String(), item.CampaignUUID)
				assert.Equal(t, campaign.Name, item.CampaignName)
				assert.NotEmpty(t, item.Benchmark.Industry)
			}
		})

		t.Run("PercentileBucketMappedForDisplay", func(t *testing.T) {
			resp, err := flow.ListComparisons(ctx, &dto.ListComparisonsRequest{
				UserID:       1,
				CompanyID:    company.ID,
				CampaignUUID: campaign.UUID.String(),
			}, metadata)
			require.NoError(t, err)

			buckets := make(map[string]int)
			for _, item := range resp.Items {
				buckets[item.KPI] = item.PercentileBucket
			}
			// Stored percentile 75 surfaces as the 60 badge, 90 stays 90
			assert.Equal(t, 60, buckets[benchmarks[0].KPI.String()])
			assert.Equal(t, 90, buckets[benchmarks[1].KPI.String()])
		})

		t.Run("ByCompanyPaged", func(t *testing.T) {
			resp, err := flow.ListComparisons(ctx, &dto.ListComparisonsRequest{
				UserID:    1,
				CompanyID: company.ID,
				Page:      1,
				PageSize:  1,
			}, metadata)
			require.NoError(t, err)
			assert.Len(t, resp.Items, 1)
			assert.Equal(t, int64(2), resp.Total)
		})

		t.Run("CampaignNotFound", func(t *testing.T) {
			_, err := flow.ListComparisons(ctx, &dto.ListComparisonsRequest{
				UserID:       1,
				CompanyID:    company.ID,
				CampaignUUID: uuid.New().String(),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		t.Run("CampaignOwnedByAnotherCompany", func(t *testing.T) {
			other, err := fixtures.CreateTestCompany()
			require.NoError(t, err)

			_, err = flow.ListComparisons(ctx, &dto.ListComparisonsRequest{
				UserID:       1,
				CompanyID:    other.ID,
				CampaignUUID: campaign.UUID.String(),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignAccessDenied(err))
		})

		t.Run("InvalidPageSize", func(t *testing.T) {
			_, err := flow.ListComparisons(ctx, &dto.ListComparisonsRequest{
				UserID:    1,
				CompanyID: company.ID,
				PageSize:  1000,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestComparisonFlowExportComparisons(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		comparisonRepo := repository.NewBenchmarkComparisonRepository(testDB.DB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		flow := businessflow.NewComparisonFlow(comparisonRepo, campaignRepo)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("NoComparisons", func(t *testing.T) {
			_, _, err := flow.ExportComparisons(ctx, &dto.ExportComparisonsRequest{
				UserID:    1,
				CompanyID: company.ID,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoComparisonsFound(err))
		})

		account, err := fixtures.CreateTestOAuthAccount(1, company.ID, models.ProviderMetaAds)
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(account, models.ChannelSocial)
		require.NoError(t, err)

		benchmarks, err := testDB.SeedTestBenchmarks("E-commerce > Retail", "meta_ads", "Social")
		require.NoError(t, err)

		_, err = fixtures.CreateTestComparison(campaign, benchmarks[0], 0.025, 50, 30)
		require.NoError(t, err)

		t.Run("WorkbookContents", func(t *testing.T) {
			filename, content, err := flow.ExportComparisons(ctx, &dto.ExportComparisonsRequest{
				UserID:    1,
				CompanyID: company.ID,
			}, metadata)
			require.NoError(t, err)
			assert.Regexp(t, `^benchmark_comparisons_\d{4}-\d{2}-\d{2}\.xlsx$`, filename)
			require.NotEmpty(t, content)

			xl, err := excelize.OpenReader(bytes.NewReader(content))
			require.NoError(t, err)
			defer xl.Close()

			rows, err := xl.GetRows("Comparisons")
			require.NoError(t, err)
			require.Len(t, rows, 2)

			assert.Equal(t, "campaign", rows[0][0])
			assert.Equal(t, campaign.Name, rows[1][0])
			assert.Equal(t, benchmarks[0].KPI.String(), rows[1][3])
			// Stored percentile 50 exports as the 30 badge
			assert.Equal(t, "30", rows[1][8])
		})

		return nil
	})
	require.NoError(t, err)
}
