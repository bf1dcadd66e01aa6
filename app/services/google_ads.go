package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benchmetrics/compscore/config"
	"github.com/benchmetrics/compscore/models"
)

type googleAdsFetcher struct {
	cfg    config.OAuthProviderConfig
	client *http.Client
}

// NewGoogleAdsFetcher creates a fetcher for the Google Ads reporting API.
func NewGoogleAdsFetcher(cfg config.OAuthProviderConfig) PlatformFetcher {
	return &googleAdsFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (f *googleAdsFetcher) Provider() models.ProviderType {
	return models.ProviderGoogleAds
}

type googleAdsRow struct {
	Campaign struct {
		ID                 string `json:"id"`
		Name               string `json:"name"`
		Status             string `json:"status"`
		AdvertisingChannel string `json:"advertisingChannelType"`
	} `json:"campaign"`
	Metrics struct {
		Impressions      int64   `json:"impressions,string"`
		Clicks           int64   `json:"clicks,string"`
		CostMicros       int64   `json:"costMicros,string"`
		Conversions      float64 `json:"conversions"`
		ConversionsValue float64 `json:"conversionsValue"`
	} `json:"metrics"`
}

func (f *googleAdsFetcher) FetchCampaigns(ctx context.Context, accessToken, accountID string, window DateWindow) ([]RawCampaignRecord, error) {
	query := fmt.Sprintf(
		"SELECT campaign.id, campaign.name, campaign.status, campaign.advertising_channel_type, "+
			"metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.conversions, metrics.conversions_value "+
			"FROM campaign WHERE segments.date BETWEEN '%s' AND '%s'",
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

	payload := struct {
		Query string `json:"query"`
	}{Query: query}

	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v16/customers/%s/googleAds:searchStream", f.cfg.APIBaseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkFetchStatus(f.Provider(), resp.StatusCode); err != nil {
		return nil, err
	}

	var out []struct {
		Results []googleAdsRow `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	var records []RawCampaignRecord
	for _, batch := range out {
		for _, row := range batch.Results {
			rec := RawCampaignRecord{
				ExternalID:      row.Campaign.ID,
				Name:            row.Campaign.Name,
				Status:          row.Campaign.Status,
				Channel:         googleAdsChannel(row.Campaign.AdvertisingChannel),
				Impressions:     row.Metrics.Impressions,
				Clicks:          row.Metrics.Clicks,
				Spend:           float64(row.Metrics.CostMicros) / 1e6,
				Conversions:     row.Metrics.Conversions,
				ConversionValue: row.Metrics.ConversionsValue,
			}
			if err := rec.Validate(); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func googleAdsChannel(channelType string) models.ChannelType {
	switch channelType {
	case "SEARCH":
		return models.ChannelSearch
	case "VIDEO":
		return models.ChannelVideo
	case "SHOPPING":
		return models.ChannelShopping
	case "DISPLAY":
		return models.ChannelDisplay
	case "DEMAND_GEN", "DISCOVERY":
		return models.ChannelSocial
	default:
		return models.ChannelOther
	}
}
