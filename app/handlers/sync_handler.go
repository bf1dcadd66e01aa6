// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/benchmetrics/compscore/app/dto"
	businessflow "github.com/benchmetrics/compscore/business_flow"
	"github.com/benchmetrics/compscore/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SyncHandlerInterface defines the contract for sync handlers
type SyncHandlerInterface interface {
	TriggerSync(c fiber.Ctx) error
	ListSyncLogs(c fiber.Ctx) error
}

// SyncHandler handles sync-related HTTP requests
type SyncHandler struct {
	syncFlow  businessflow.SyncFlow
	validator *validator.Validate
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncFlow businessflow.SyncFlow) *SyncHandler {
	return &SyncHandler{
		syncFlow:  syncFlow,
		validator: validator.New(),
	}
}

func (h *SyncHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SyncHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// TriggerSync runs a manual sync for the user's active connection
// @Summary Trigger Sync
// @Description Fetch campaign metrics from the given provider and recompute benchmark comparisons
// @Tags Sync
// @Accept json
// @Produce json
// @Param request body dto.TriggerSyncRequest true "Sync parameters"
// @Success 200 {object} dto.APIResponse{data=dto.TriggerSyncResponse} "Sync finished"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 409 {object} dto.APIResponse "No syncable account for the provider"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerSync(c fiber.Ctx) error {
	var req dto.TriggerSyncRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	req.UserID = userID
	req.CompanyID = companyID

	// Provider fetches can take a while; give the sync a generous deadline.
	result, err := h.syncFlow.TriggerSync(h.createRequestContextWithTimeout(c, "/api/v1/sync", 5*time.Minute), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidProvider(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid provider", "INVALID_PROVIDER", nil)
		}
		if businessflow.IsInvalidJobType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job type", "INVALID_JOB_TYPE", nil)
		}
		if businessflow.IsAccountNotSyncable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "No syncable account for this provider", "ACCOUNT_NOT_SYNCABLE", nil)
		}

		log.Println("Sync failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Sync failed", "SYNC_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sync finished", result)
}

// ListSyncLogs returns the user's sync history
// @Summary List Sync Logs
// @Tags Sync
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListSyncLogsResponse} "Sync logs retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sync/logs [get]
func (h *SyncHandler) ListSyncLogs(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	req := dto.ListSyncLogsRequest{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.syncFlow.ListSyncLogs(h.createRequestContext(c, "/api/v1/sync/logs"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List sync logs failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list sync logs", "LIST_SYNC_LOGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sync logs retrieved successfully", result)
}

func (h *SyncHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *SyncHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
