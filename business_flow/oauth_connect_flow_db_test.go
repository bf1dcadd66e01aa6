package businessflow_test

import (
	"testing"

	businessflow "github.com/benchmetrics/compscore/business_flow"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	testingutil "github.com/benchmetrics/compscore/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthConnectFlowConnect(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		accountRepo := repository.NewOAuthAccountRepository(testDB.DB)
		companyRepo := repository.NewCompanyRepository(testDB.DB)
		flow := businessflow.NewOAuthConnectFlow(accountRepo, companyRepo, nil, testDB.DB, nil)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		t.Run("Success", func(t *testing.T) {
			resp, err := flow.Connect(ctx, &dto.ConnectOAuthAccountRequest{
				UserID:       1,
				CompanyID:    company.ID,
				Provider:     "google_ads",
				AccountID:    "123-456-7890",
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
				ExpiresIn:    3600,
			}, metadata)
			require.NoError(t, err)
			assert.Contains(t, resp.Message, "Google Ads")
			assert.Equal(t, "google_ads", resp.Account.Provider)
			assert.Equal(t, string(models.OAuthAccountStatusActive), resp.Account.Status)
			assert.NotEmpty(t, resp.Account.UUID)

			stored, err := accountRepo.ActiveByUserAndProvider(ctx, 1, models.ProviderGoogleAds)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "123-456-7890", stored.AccountID)
		})

		t.Run("ReconnectDemotesPrevious", func(t *testing.T) {
			first, err := accountRepo.ActiveByUserAndProvider(ctx, 1, models.ProviderGoogleAds)
			require.NoError(t, err)
			require.NotNil(t, first)

			_, err = flow.Connect(ctx, &dto.ConnectOAuthAccountRequest{
				UserID:       1,
				CompanyID:    company.ID,
				Provider:     "google_ads",
				AccountID:    "999-000-1111",
				AccessToken:  "new-access-token",
				RefreshToken: "new-refresh-token",
				ExpiresIn:    3600,
			}, metadata)
			require.NoError(t, err)

			demoted, err := accountRepo.ByID(ctx, first.ID)
			require.NoError(t, err)
			require.NotNil(t, demoted)
			assert.Equal(t, models.OAuthAccountStatusDisconnected, demoted.Status)

			active, err := accountRepo.ActiveByUserAndProvider(ctx, 1, models.ProviderGoogleAds)
			require.NoError(t, err)
			require.NotNil(t, active)
			assert.Equal(t, "999-000-1111", active.AccountID)
		})

		t.Run("InvalidProvider", func(t *testing.T) {
			_, err := flow.Connect(ctx, &dto.ConnectOAuthAccountRequest{
				UserID:       1,
				CompanyID:    company.ID,
				Provider:     "bing_ads",
				AccountID:    "x",
				AccessToken:  "x",
				RefreshToken: "x",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidProvider(err))
		})

		t.Run("MissingAccessToken", func(t *testing.T) {
			_, err := flow.Connect(ctx, &dto.ConnectOAuthAccountRequest{
				UserID:    1,
				CompanyID: company.ID,
				Provider:  "meta_ads",
				AccountID: "act_1",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessTokenRequired(err))
		})

		t.Run("CompanyNotFound", func(t *testing.T) {
			_, err := flow.Connect(ctx, &dto.ConnectOAuthAccountRequest{
				UserID:       1,
				CompanyID:    999999,
				Provider:     "meta_ads",
				AccountID:    "act_1",
				AccessToken:  "x",
				RefreshToken: "x",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOAuthConnectFlowDisconnectAndList(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		accountRepo := repository.NewOAuthAccountRepository(testDB.DB)
		companyRepo := repository.NewCompanyRepository(testDB.DB)
		flow := businessflow.NewOAuthConnectFlow(accountRepo, companyRepo, nil, testDB.DB, nil)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		company, err := fixtures.CreateTestCompany()
		require.NoError(t, err)

		_, err = fixtures.CreateTestOAuthAccount(5, company.ID, models.ProviderTikTokAds)
		require.NoError(t, err)
		_, err = fixtures.CreateTestOAuthAccount(5, company.ID, models.ProviderMetaAds)
		require.NoError(t, err)

		t.Run("ListAccounts", func(t *testing.T) {
			resp, err := flow.ListAccounts(ctx, 5, metadata)
			require.NoError(t, err)
			assert.Len(t, resp.Items, 2)
			for _, item := range resp.Items {
				assert.NotEmpty(t, item.UUID)
				assert.NotEmpty(t, item.Platform)
			}
		})

		t.Run("Disconnect", func(t *testing.T) {
			resp, err := flow.Disconnect(ctx, &dto.DisconnectOAuthAccountRequest{
				UserID:   5,
				Provider: "tiktok_ads",
			}, metadata)
			require.NoError(t, err)
			assert.Contains(t, resp.Message, "disconnected")

			active, err := accountRepo.ActiveByUserAndProvider(ctx, 5, models.ProviderTikTokAds)
			require.NoError(t, err)
			assert.Nil(t, active)
		})

		t.Run("DisconnectWithoutActiveAccount", func(t *testing.T) {
			_, err := flow.Disconnect(ctx, &dto.DisconnectOAuthAccountRequest{
				UserID:   5,
				Provider: "tiktok_ads",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
