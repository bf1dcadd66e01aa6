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

type googleAnalyticsFetcher struct {
	cfg    config.OAuthProviderConfig
	client *http.Client
}

// NewGoogleAnalyticsFetcher creates a fetcher for the GA4 data API. GA4 has no
// paid-campaign ledger, so session campaigns are reported with zero spend and
// feed traffic KPIs only.
func NewGoogleAnalyticsFetcher(cfg config.OAuthProviderConfig) PlatformFetcher {
	return &googleAnalyticsFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (f *googleAnalyticsFetcher) Provider() models.ProviderType {
	return models.ProviderGoogleAnalytics
}

func (f *googleAnalyticsFetcher) FetchCampaigns(ctx context.Context, accessToken, accountID string, window DateWindow) ([]RawCampaignRecord, error) {
	payload := map[string]any{
		"dateRanges": []map[string]string{{
			"startDate": window.Start.Format("2006-01-02"),
			"endDate":   window.End.Format("2006-01-02"),
		}},
		"dimensions": []map[string]string{{"name": "sessionCampaignId"}, {"name": "sessionCampaignName"}},
		"metrics": []map[string]string{
			{"name": "sessions"},
			{"name": "engagedSessions"},
			{"name": "conversions"},
			{"name": "totalRevenue"},
		},
	}

	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/properties/%s:runReport", f.cfg.APIBaseURL, accountID)
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

	var out struct {
		Rows []struct {
			DimensionValues []struct {
				Value string `json:"value"`
			} `json:"dimensionValues"`
			MetricValues []struct {
				Value string `json:"value"`
			} `json:"metricValues"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	var records []RawCampaignRecord
	for _, row := range out.Rows {
		if len(row.DimensionValues) < 2 || len(row.MetricValues) < 4 {
			continue
		}
		rec := RawCampaignRecord{
			ExternalID:      row.DimensionValues[0].Value,
			Name:            row.DimensionValues[1].Value,
			Status:          "ACTIVE",
			Channel:         models.ChannelOther,
			Impressions:     int64(parseDecimalString(row.MetricValues[0].Value)),
			Clicks:          int64(parseDecimalString(row.MetricValues[1].Value)),
			Spend:           0,
			Conversions:     parseDecimalString(row.MetricValues[2].Value),
			ConversionValue: parseDecimalString(row.MetricValues[3].Value),
		}
		if rec.ExternalID == "" || rec.ExternalID == "(not set)" {
			continue
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
