// Package businessflow contains the core business logic and use cases for sync and scoring workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Company-related errors
	ErrCompanyNotFound     = errors.New("company not found")
	ErrIndustryNotSet      = errors.New("company industry is not set")
	ErrCompanyAccessDenied = errors.New("company access denied")

	// OAuth account errors
	ErrAccountNotFound     = errors.New("ad account not found")
	ErrAccountNotSyncable  = errors.New("ad account is not syncable")
	ErrInvalidProvider     = errors.New("invalid provider")
	ErrAccessTokenRequired = errors.New("access token is required")
	ErrAccountIDRequired   = errors.New("external account ID is required")

	// Sync errors
	ErrInvalidJobType  = errors.New("invalid sync job type")
	ErrSyncLogNotFound = errors.New("sync log not found")
	ErrSyncInProgress  = errors.New("a sync is already running for this account")

	// Campaign and comparison errors
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignAccessDenied = errors.New("campaign access denied")
	ErrNoComparisonsFound   = errors.New("no benchmark comparisons found")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCompanyNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

func IsIndustryNotSet(err error) bool {
	return errors.Is(err, ErrIndustryNotSet)
}

func IsCompanyAccessDenied(err error) bool {
	return errors.Is(err, ErrCompanyAccessDenied)
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountNotSyncable(err error) bool {
	return errors.Is(err, ErrAccountNotSyncable)
}

func IsInvalidProvider(err error) bool {
	return errors.Is(err, ErrInvalidProvider)
}

func IsAccessTokenRequired(err error) bool {
	return errors.Is(err, ErrAccessTokenRequired)
}

func IsAccountIDRequired(err error) bool {
	return errors.Is(err, ErrAccountIDRequired)
}

func IsInvalidJobType(err error) bool {
	return errors.Is(err, ErrInvalidJobType)
}

func IsSyncLogNotFound(err error) bool {
	return errors.Is(err, ErrSyncLogNotFound)
}

func IsSyncInProgress(err error) bool {
	return errors.Is(err, ErrSyncInProgress)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsNoComparisonsFound(err error) bool {
	return errors.Is(err, ErrNoComparisonsFound)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
