// Package businessflow contains use cases for triggering syncs and reading sync history
package businessflow

import (
	"context"
	"errors"
	"log"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/app/scheduler"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
)

// SyncFlow defines user-facing sync operations
type SyncFlow interface {
	TriggerSync(ctx context.Context, req *dto.TriggerSyncRequest, metadata *ClientMetadata) (*dto.TriggerSyncResponse, error)
	ListSyncLogs(ctx context.Context, req *dto.ListSyncLogsRequest, metadata *ClientMetadata) (*dto.ListSyncLogsResponse, error)
}

type SyncFlowImpl struct {
	orchestrator *scheduler.SyncOrchestrator
	syncLogRepo  repository.SyncLogRepository
	logger       *log.Logger
}

func NewSyncFlow(
	orchestrator *scheduler.SyncOrchestrator,
	syncLogRepo repository.SyncLogRepository,
	logger *log.Logger,
) SyncFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncFlowImpl{
		orchestrator: orchestrator,
		syncLogRepo:  syncLogRepo,
		logger:       logger,
	}
}

// TriggerSync runs a manual sync for the user's active connection and waits
// for the attempt to finish. The returned sync log is terminal either way.
func (f *SyncFlowImpl) TriggerSync(ctx context.Context, req *dto.TriggerSyncRequest, metadata *ClientMetadata) (*dto.TriggerSyncResponse, error) {
	provider := models.ProviderType(req.Provider)
	if !provider.Valid() {
		return nil, NewBusinessError("SYNC_VALIDATION_FAILED", "Sync validation failed", ErrInvalidProvider)
	}

	jobType := models.SyncJobManual
	if req.JobType != "" {
		jobType = models.SyncJobType(req.JobType)
		if !jobType.Valid() {
			return nil, NewBusinessError("SYNC_VALIDATION_FAILED", "Sync validation failed", ErrInvalidJobType)
		}
	}

	syncLog, err := f.orchestrator.RunSync(ctx, scheduler.SyncRequest{
		UserID:     req.UserID,
		CompanyID:  req.CompanyID,
		Provider:   provider,
		JobType:    jobType,
		DaysBack:   req.DaysBack,
		TargetDate: req.TargetDate,
	})
	if err != nil {
		if errors.Is(err, scheduler.ErrNoSyncableAccount) {
			return nil, NewBusinessError("SYNC_FAILED", "Failed to run sync", ErrAccountNotSyncable)
		}
		// A failed attempt still produces a terminal sync log; surface it so
		// callers can show what went wrong.
		if syncLog != nil {
			return &dto.TriggerSyncResponse{
				Message: "Sync finished with errors",
				SyncLog: ToSyncLogDTO(*syncLog),
			}, nil
		}
		return nil, NewBusinessError("SYNC_FAILED", "Failed to run sync", err)
	}

	return &dto.TriggerSyncResponse{
		Message: "Sync completed successfully",
		SyncLog: ToSyncLogDTO(*syncLog),
	}, nil
}

// ListSyncLogs returns the user's sync history, newest first
func (f *SyncFlowImpl) ListSyncLogs(ctx context.Context, req *dto.ListSyncLogsRequest, metadata *ClientMetadata) (*dto.ListSyncLogsResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, NewBusinessError("LIST_SYNC_LOGS_VALIDATION_FAILED", "List sync logs validation failed", ErrInvalidPage)
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("LIST_SYNC_LOGS_VALIDATION_FAILED", "List sync logs validation failed", ErrInvalidPageSize)
	}

	offset := (page - 1) * pageSize

	rows, err := f.syncLogRepo.ListByUser(ctx, req.UserID, pageSize, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_SYNC_LOGS_FAILED", "Failed to list sync logs", err)
	}

	total, err := f.syncLogRepo.Count(ctx, models.SyncLogFilter{UserID: &req.UserID})
	if err != nil {
		return nil, NewBusinessError("LIST_SYNC_LOGS_FAILED", "Failed to list sync logs", err)
	}

	items := make([]dto.SyncLogDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToSyncLogDTO(*r))
	}

	return &dto.ListSyncLogsResponse{
		Message: "Sync logs retrieved successfully",
		Items:   items,
		Page:    page,
		Total:   total,
	}, nil
}
