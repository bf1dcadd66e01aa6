// Package models contains the database models for the application
package models

import (
	"database/sql/driver"
	"fmt"
)

// ProviderType identifies a connected ad platform
type ProviderType string

const (
	ProviderGoogleAds       ProviderType = "google_ads"
	ProviderMetaAds         ProviderType = "meta_ads"
	ProviderLinkedInAds     ProviderType = "linkedin_ads"
	ProviderTikTokAds       ProviderType = "tiktok_ads"
	ProviderGoogleAnalytics ProviderType = "google_analytics"
)

// String returns the string representation of the provider
func (p ProviderType) String() string {
	return string(p)
}

// Valid checks if the provider is valid
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderGoogleAds, ProviderMetaAds, ProviderLinkedInAds,
		ProviderTikTokAds, ProviderGoogleAnalytics:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ProviderType
func (p *ProviderType) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = ProviderType(v)
	case []byte:
		*p = ProviderType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ProviderType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ProviderType
func (p ProviderType) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid ProviderType: %s", p)
	}
	return string(p), nil
}

// PlatformName returns the display name used by benchmark reference rows
func (p ProviderType) PlatformName() string {
	switch p {
	case ProviderGoogleAds:
		return "Google Ads"
	case ProviderMetaAds:
		return "Meta"
	case ProviderLinkedInAds:
		return "LinkedIn"
	case ProviderTikTokAds:
		return "TikTok"
	case ProviderGoogleAnalytics:
		return "Google Analytics"
	default:
		return "Unknown"
	}
}

// AllProviders lists every supported provider
func AllProviders() []ProviderType {
	return []ProviderType{
		ProviderGoogleAds,
		ProviderMetaAds,
		ProviderLinkedInAds,
		ProviderTikTokAds,
		ProviderGoogleAnalytics,
	}
}
