package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenSkew is subtracted from provider expiry so a token is refreshed
	// slightly before the provider would reject it
	AccessTokenSkew = 2 * time.Minute

	// DefaultTokenTTL is assumed when a provider omits expires_in
	DefaultTokenTTL = time.Hour
)

// Sync constants
const (
	// BackfillDaysBack is the window for an initial full sync
	BackfillDaysBack = 30

	// DeltaDaysBack is the window for a scheduled daily sync
	DeltaDaysBack = 1

	// FetchRequestDelay is the fixed pause between date-partitioned provider calls
	// within a single sync attempt
	FetchRequestDelay = 100 * time.Millisecond
)

// Scoring constants
const (
	// MinPerformanceScore and MaxPerformanceScore bound the persisted score
	MinPerformanceScore = 1
	MaxPerformanceScore = 100

	// SpendEpsilon guards ROAS against division by zero spend
	SpendEpsilon = 1e-9
)
