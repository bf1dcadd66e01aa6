package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/benchmetrics/compscore/config"
	"github.com/benchmetrics/compscore/models"
)

type metaAdsFetcher struct {
	cfg    config.OAuthProviderConfig
	client *http.Client
}

// NewMetaAdsFetcher creates a fetcher for the Meta Graph marketing API.
func NewMetaAdsFetcher(cfg config.OAuthProviderConfig) PlatformFetcher {
	return &metaAdsFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (f *metaAdsFetcher) Provider() models.ProviderType {
	return models.ProviderMetaAds
}

type metaInsightRow struct {
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	Spend        string `json:"spend"`
	Actions      []struct {
		ActionType string `json:"action_type"`
		Value      string `json:"value"`
	} `json:"actions"`
	ActionValues []struct {
		ActionType string `json:"action_type"`
		Value      string `json:"value"`
	} `json:"action_values"`
}

func (f *metaAdsFetcher) FetchCampaigns(ctx context.Context, accessToken, accountID string, window DateWindow) ([]RawCampaignRecord, error) {
	endpoint := fmt.Sprintf("%s/act_%s/insights", f.cfg.APIBaseURL, accountID)
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

	q := u.Query()
	q.Set("level", "campaign")
	q.Set("fields", "campaign_id,campaign_name,impressions,clicks,spend,actions,action_values")
	q.Set("time_range", timeRange)
	q.Set("access_token", accessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkFetchStatus(f.Provider(), resp.StatusCode); err != nil {
		return nil, err
	}

	var out struct {
		Data []metaInsightRow `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	var records []RawCampaignRecord
	for _, row := range out.Data {
		impressions, _ := strconv.ParseInt(row.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(row.Clicks, 10, 64)
		spend, _ := strconv.ParseFloat(row.Spend, 64)

		var conversions, conversionValue float64
		for _, a := range row.Actions {
			if a.ActionType == "purchase" || a.ActionType == "lead" || a.ActionType == "complete_registration" {
				v, _ := strconv.ParseFloat(a.Value, 64)
				conversions += v
			}
		}
		for _, a := range row.ActionValues {
			if a.ActionType == "purchase" {
				v, _ := strconv.ParseFloat(a.Value, 64)
				conversionValue += v
			}
		}

		rec := RawCampaignRecord{
			ExternalID:      row.CampaignID,
			Name:            row.CampaignName,
			Status:          "ACTIVE",
			Channel:         models.ChannelSocial,
			Impressions:     impressions,
			Clicks:          clicks,
			Spend:           spend,
			Conversions:     conversions,
			ConversionValue: conversionValue,
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
