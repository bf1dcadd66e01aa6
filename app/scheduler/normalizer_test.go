package scheduler

import (
	"math"
	"testing"
	"time"

	"github.com/benchmetrics/compscore/app/services"
	"github.com/benchmetrics/compscore/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() *models.OAuthAccount {
	return &models.OAuthAccount{
		ID:        7,
		UserID:    3,
		CompanyID: 5,
		Provider:  models.ProviderGoogleAds,
		AccountID: "111-222-3333",
	}
}

func normalizeWindow() services.DateWindow {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	return services.DateWindow{Start: end.AddDate(0, 0, -30), End: end}
}

func TestNormalizeCampaignDerivedRatios(t *testing.T) {
	raw := services.RawCampaignRecord{
		ExternalID:      "c-1",
		Name:            "Brand Search",
		Status:          "ENABLED",
		Channel:         models.ChannelSearch,
		Impressions:     10000,
		Clicks:          250,
		Spend:           500,
		Conversions:     20,
		ConversionValue: 2500,
	}

	c, err := NormalizeCampaign(raw, testAccount(), normalizeWindow())
	require.NoError(t, err)

	assert.Equal(t, "c-1", c.ExternalID)
	assert.Equal(t, models.ProviderGoogleAds, c.Provider)
	assert.Equal(t, uint(5), c.CompanyID)
	assert.Equal(t, uint(7), c.OAuthAccountID)

	assert.InDelta(t, 2.5, c.CTR, 1e-9)
	assert.InDelta(t, 2.0, c.CostPerClick, 1e-9)
	assert.InDelta(t, 25.0, c.CPA, 1e-9)
	assert.InDelta(t, 5.0, c.ROAS, 1e-9)
	assert.InDelta(t, 8.0, c.ConversionRate, 1e-9)
}

func TestNormalizeCampaignZeroDenominators(t *testing.T) {
	// Spend with no clicks and no conversions must not divide by zero.
	raw := services.RawCampaignRecord{
		ExternalID:  "c-2",
		Name:        "Warmup",
		Impressions: 50,
		Clicks:      0,
		Spend:       100,
		Conversions: 0,
	}

	c, err := NormalizeCampaign(raw, testAccount(), normalizeWindow())
	require.NoError(t, err)

	assert.InDelta(t, 100.0, c.CPA, 1e-9)
	assert.InDelta(t, 0.0, c.ROAS, 1e-9)
	assert.InDelta(t, 0.0, c.ConversionRate, 1e-9)
	assert.InDelta(t, 100.0, c.CostPerClick, 1e-9)
	assert.InDelta(t, 0.0, c.CTR, 1e-9)
}

func TestNormalizeCampaignAllZero(t *testing.T) {
	raw := services.RawCampaignRecord{ExternalID: "c-3", Name: "Paused"}

	c, err := NormalizeCampaign(raw, testAccount(), normalizeWindow())
	require.NoError(t, err)

	assert.Zero(t, c.CTR)
	assert.Zero(t, c.CostPerClick)
	assert.Zero(t, c.CPA)
	assert.Zero(t, c.ROAS)
	assert.Zero(t, c.ConversionRate)
}

func TestNormalizeCampaignRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  services.RawCampaignRecord
	}{
		{name: "missing external id", raw: services.RawCampaignRecord{Impressions: 10}},
		{name: "negative impressions", raw: services.RawCampaignRecord{ExternalID: "c", Impressions: -1}},
		{name: "negative conversion value", raw: services.RawCampaignRecord{ExternalID: "c", ConversionValue: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NormalizeCampaign(tt.raw, testAccount(), normalizeWindow())
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestNormalizeCampaignUnknownChannelFallsBack(t *testing.T) {
	raw := services.RawCampaignRecord{
		ExternalID: "c-4",
		Channel:    models.ChannelType("weird"),
	}

	c, err := NormalizeCampaign(raw, testAccount(), normalizeWindow())
	require.NoError(t, err)
	assert.Equal(t, models.ChannelOther, c.Channel)
}

func TestSanitizeRatio(t *testing.T) {
	assert.Equal(t, 0.0, sanitizeRatio(math.NaN()))
	assert.Equal(t, 0.0, sanitizeRatio(math.Inf(1)))
	assert.Equal(t, 0.0, sanitizeRatio(math.Inf(-1)))
	assert.Equal(t, 1.5, sanitizeRatio(1.5))
}
