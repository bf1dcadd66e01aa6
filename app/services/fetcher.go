package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benchmetrics/compscore/models"
)

var (
	// ErrRateLimited indicates the provider returned a 429 response.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrUnauthorized indicates the access token was rejected by the provider.
	ErrUnauthorized = errors.New("provider rejected access token")
)

// DateWindow is the inclusive reporting window requested from a provider.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// RawCampaignRecord is one campaign row as reported by a provider, already
// converted to canonical units (currency, not micros or cents).
type RawCampaignRecord struct {
	ExternalID      string
	Name            string
	Status          string
	Channel         models.ChannelType
	Impressions     int64
	Clicks          int64
	Spend           float64
	Conversions     float64
	ConversionValue float64
}

// Validate rejects records that would corrupt downstream aggregates.
func (r *RawCampaignRecord) Validate() error {
	if strings.TrimSpace(r.ExternalID) == "" {
		return fmt.Errorf("campaign record missing external id")
	}
	if r.Impressions < 0 || r.Clicks < 0 {
		return fmt.Errorf("campaign %s has negative counters", r.ExternalID)
	}
	if r.Spend < 0 || r.Conversions < 0 || r.ConversionValue < 0 {
		return fmt.Errorf("campaign %s has negative monetary values", r.ExternalID)
	}
	return nil
}

// PlatformFetcher retrieves campaign performance rows from one ad platform.
type PlatformFetcher interface {
	Provider() models.ProviderType
	FetchCampaigns(ctx context.Context, accessToken, accountID string, window DateWindow) ([]RawCampaignRecord, error)
}

// campaignIDFromURN extracts the numeric id from urn:li:sponsoredCampaign:123.
func campaignIDFromURN(urn string) string {
	if idx := strings.LastIndex(urn, ":"); idx >= 0 {
		return urn[idx+1:]
	}
	return urn
}

func parseDecimalString(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func checkFetchStatus(provider models.ProviderType, statusCode int) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%w: %s http status: %d", ErrUnauthorized, provider, statusCode)
	case statusCode == 429:
		return fmt.Errorf("%w: %s", ErrRateLimited, provider)
	case statusCode < 200 || statusCode >= 300:
		return fmt.Errorf("%s http status: %d", provider, statusCode)
	}
	return nil
}
