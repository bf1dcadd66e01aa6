// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToOAuthAccountDTO converts an OAuth account model to its response shape.
// Tokens are never exposed in responses.
func ToOAuthAccountDTO(account models.OAuthAccount) dto.OAuthAccountDTO {
	var lastSyncedAt *string
	if account.LastSyncedAt != nil {
		s := account.LastSyncedAt.Format(time.RFC3339)
		lastSyncedAt = &s
	}

	return dto.OAuthAccountDTO{
		UUID:         account.UUID.String(),
		Provider:     account.Provider.String(),
		Platform:     account.Provider.PlatformName(),
		AccountID:    account.AccountID,
		Status:       account.Status.String(),
		ExpiresAt:    account.ExpiresAt.Format(time.RFC3339),
		LastSyncedAt: lastSyncedAt,
		CreatedAt:    account.CreatedAt.Format(time.RFC3339),
	}
}

// ToSyncLogDTO converts a sync log model to its response shape
func ToSyncLogDTO(log models.SyncLog) dto.SyncLogDTO {
	var completedAt *string
	if log.CompletedAt != nil {
		s := log.CompletedAt.Format(time.RFC3339)
		completedAt = &s
	}

	return dto.SyncLogDTO{
		UUID:          log.UUID.String(),
		Provider:      log.Provider.String(),
		JobType:       string(log.JobType),
		Status:        log.Status.String(),
		Message:       log.Message,
		RecordsSynced: log.RecordsSynced,
		StartedAt:     log.StartedAt.Format(time.RFC3339),
		CompletedAt:   completedAt,
	}
}

// ToComparisonDTO converts a scored comparison to its response shape. The
// persisted percentile is translated to the coarse display bucket here; the
// Benchmark and Campaign relations must be preloaded.
func ToComparisonDTO(cmp models.BenchmarkComparison) dto.ComparisonDTO {
	out := dto.ComparisonDTO{
		KPI:              cmp.KPI.String(),
		UserValue:        cmp.UserValue,
		PercentileBucket: cmp.DisplayBucket(),
		PerformanceScore: cmp.PerformanceScore,
	}

	if cmp.UpdatedAt != nil {
		out.UpdatedAt = cmp.UpdatedAt.Format(time.RFC3339)
	} else {
		out.UpdatedAt = cmp.CreatedAt.Format(time.RFC3339)
	}

	if cmp.Campaign != nil {
		out.CampaignUUID = cmp.Campaign.UUID.String()
		out.CampaignName = cmp.Campaign.Name
	}

	if cmp.Benchmark != nil {
		out.Benchmark = dto.BenchmarkContextDTO{
			Industry: cmp.Benchmark.Industry,
			Platform: cmp.Benchmark.Platform,
			Channel:  cmp.Benchmark.Channel,
			P25:      cmp.Benchmark.Percentile25,
			Median:   cmp.Benchmark.Median,
			P75:      cmp.Benchmark.Percentile75,
		}
	}

	return out
}
