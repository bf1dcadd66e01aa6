// Package scheduler contains the sync pipeline: normalization, benchmark
// matching, percentile scoring, and the orchestrated sync loop.
package scheduler

import (
	"fmt"
	"math"

	"github.com/benchmetrics/compscore/app/services"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
)

// NormalizeCampaign converts a raw provider record into a Campaign row with all
// derived ratios computed. Pure function, safe to call concurrently.
func NormalizeCampaign(raw services.RawCampaignRecord, account *models.OAuthAccount, window services.DateWindow) (*models.Campaign, error) {
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	channel := raw.Channel
	if !channel.Valid() {
		channel = models.ChannelOther
	}

	c := &models.Campaign{
		ExternalID:      raw.ExternalID,
		Provider:        account.Provider,
		CompanyID:       account.CompanyID,
		OAuthAccountID:  account.ID,
		Name:            raw.Name,
		Channel:         channel,
		Status:          raw.Status,
		Impressions:     raw.Impressions,
		Clicks:          raw.Clicks,
		Spend:           raw.Spend,
		Conversions:     raw.Conversions,
		ConversionValue: raw.ConversionValue,
		WindowStart:     window.Start,
		WindowEnd:       window.End,
		SyncedAt:        utils.UTCNow(),
	}

	c.CTR = sanitizeRatio(float64(raw.Clicks) / math.Max(float64(raw.Impressions), 1) * 100)
	c.CostPerClick = sanitizeRatio(raw.Spend / math.Max(float64(raw.Clicks), 1))
	c.CPA = sanitizeRatio(raw.Spend / math.Max(raw.Conversions, 1))
	c.ROAS = sanitizeRatio(raw.ConversionValue / math.Max(raw.Spend, utils.SpendEpsilon))
	c.ConversionRate = sanitizeRatio(raw.Conversions / math.Max(float64(raw.Clicks), 1) * 100)

	return c, nil
}

// sanitizeRatio keeps NaN and Inf out of storage.
func sanitizeRatio(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
