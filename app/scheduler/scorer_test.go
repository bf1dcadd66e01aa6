package scheduler

import (
	"testing"

	"github.com/benchmetrics/compscore/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cpaBenchmark() *models.Benchmark {
	return &models.Benchmark{
		ID:           1,
		Industry:     "E-commerce & Retail",
		Platform:     "Google Ads",
		KPI:          models.KPICPA,
		Percentile25: 10,
		Median:       20,
		Percentile75: 40,
	}
}

func roasBenchmark() *models.Benchmark {
	return &models.Benchmark{
		ID:           2,
		Industry:     "E-commerce & Retail",
		Platform:     "Google Ads",
		KPI:          models.KPIROAS,
		Percentile25: 2,
		Median:       4,
		Percentile75: 6,
	}
}

func campaignWithMetrics() *models.Campaign {
	return &models.Campaign{
		ID:              1,
		Provider:        models.ProviderGoogleAds,
		Impressions:     10000,
		Clicks:          250,
		Spend:           500,
		Conversions:     20,
		ConversionValue: 2500,
		CTR:             2.5,
		CostPerClick:    2.0,
		CPA:             25,
		ROAS:            5.0,
		ConversionRate:  8.0,
	}
}

func TestScoreCampaignLowerIsBetter(t *testing.T) {
	tests := []struct {
		name       string
		cpa        float64
		wantBucket int
		wantScore  int
	}{
		{name: "at or below p25 is top", cpa: 5, wantBucket: 90, wantScore: 90},
		{name: "exactly p25", cpa: 10, wantBucket: 90, wantScore: 90},
		{name: "at or below median", cpa: 15, wantBucket: 75, wantScore: 70},
		{name: "at or below p75", cpa: 30, wantBucket: 50, wantScore: 50},
		{name: "above p75 is bottom", cpa: 100, wantBucket: 25, wantScore: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := campaignWithMetrics()
			c.CPA = tt.cpa

			result, err := ScoreCampaign(c, cpaBenchmark())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, models.KPICPA, result.KPI)
			assert.InDelta(t, tt.cpa, result.UserValue, 1e-9)
			assert.Equal(t, tt.wantBucket, result.PercentileBucket)
			assert.Equal(t, tt.wantScore, result.PerformanceScore)
		})
	}
}

func TestScoreCampaignHigherIsBetter(t *testing.T) {
	tests := []struct {
		name       string
		roas       float64
		wantBucket int
		wantScore  int
	}{
		{name: "at or above p75 is top", roas: 7, wantBucket: 90, wantScore: 90},
		{name: "exactly p75", roas: 6, wantBucket: 90, wantScore: 90},
		{name: "at or above median", roas: 5, wantBucket: 75, wantScore: 70},
		{name: "at or above p25", roas: 3, wantBucket: 50, wantScore: 50},
		{name: "below p25 is bottom", roas: 1, wantBucket: 25, wantScore: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := campaignWithMetrics()
			c.ROAS = tt.roas

			result, err := ScoreCampaign(c, roasBenchmark())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.wantBucket, result.PercentileBucket)
			assert.Equal(t, tt.wantScore, result.PerformanceScore)
		})
	}
}

func TestScoreCampaignSkipsMeaninglessKPI(t *testing.T) {
	// Zero clicks means CTR carries no signal; the comparison is skipped,
	// not recorded as zero.
	c := campaignWithMetrics()
	c.Clicks = 0

	ctrBenchmark := &models.Benchmark{
		ID:           3,
		KPI:          models.KPICTR,
		Percentile25: 1,
		Median:       2,
		Percentile75: 3,
	}

	result, err := ScoreCampaign(c, ctrBenchmark)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestScoreCampaignUnknownKPI(t *testing.T) {
	c := campaignWithMetrics()
	b := &models.Benchmark{ID: 4, KPI: models.KPIType("engagement_rate")}

	result, err := ScoreCampaign(c, b)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnknownKPIPolarity)
}

func TestDisplayBucketMapping(t *testing.T) {
	tests := []struct {
		persisted int
		display   int
	}{
		{persisted: 90, display: 90},
		{persisted: 75, display: 60},
		{persisted: 50, display: 30},
		{persisted: 25, display: 10},
	}

	for _, tt := range tests {
		comparison := &models.BenchmarkComparison{BenchmarkPercentile: tt.persisted}
		assert.Equal(t, tt.display, comparison.DisplayBucket())
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1, clampScore(0))
	assert.Equal(t, 1, clampScore(-10))
	assert.Equal(t, 100, clampScore(150))
	assert.Equal(t, 50, clampScore(50))
}
