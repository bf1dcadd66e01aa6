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
	"github.com/gofiber/fiber/v3"
)

// ComparisonHandlerInterface defines the contract for comparison handlers
type ComparisonHandlerInterface interface {
	ListByCampaign(c fiber.Ctx) error
	ListByCompany(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// ComparisonHandler handles benchmark comparison HTTP requests
type ComparisonHandler struct {
	comparisonFlow businessflow.ComparisonFlow
}

// NewComparisonHandler creates a new comparison handler
func NewComparisonHandler(comparisonFlow businessflow.ComparisonFlow) *ComparisonHandler {
	return &ComparisonHandler{comparisonFlow: comparisonFlow}
}

func (h *ComparisonHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ComparisonHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListByCampaign returns the scored comparisons for one campaign
// @Summary List Campaign Comparisons
// @Tags Comparisons
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ListComparisonsResponse} "Comparisons retrieved successfully"
// @Failure 403 {object} dto.APIResponse "Campaign belongs to another company"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/comparisons [get]
func (h *ComparisonHandler) ListByCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
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

	req := dto.ListComparisonsRequest{
		UserID:       userID,
		CompanyID:    companyID,
		CampaignUUID: campaignUUID,
	}

	result, err := h.comparisonFlow.ListComparisons(h.createRequestContext(c, "/api/v1/campaigns/:uuid/comparisons"), &req, metadata)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Campaign access denied", "CAMPAIGN_ACCESS_DENIED", nil)
		}

		log.Println("List campaign comparisons failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list comparisons", "LIST_COMPARISONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Comparisons retrieved successfully", result)
}

// ListByCompany returns the scored comparisons across all campaigns of the company
// @Summary List Company Comparisons
// @Tags Comparisons
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListComparisonsResponse} "Comparisons retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/comparisons [get]
func (h *ComparisonHandler) ListByCompany(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))

	req := dto.ListComparisonsRequest{
		UserID:    userID,
		CompanyID: companyID,
		Page:      page,
		PageSize:  pageSize,
	}

	result, err := h.comparisonFlow.ListComparisons(h.createRequestContext(c, "/api/v1/comparisons"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List comparisons failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list comparisons", "LIST_COMPARISONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Comparisons retrieved successfully", result)
}

// Export downloads all scored comparisons of the company as an Excel file
// @Summary Export Comparisons
// @Tags Comparisons
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Excel workbook"
// @Failure 404 {object} dto.APIResponse "No comparisons to export"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/comparisons/export [get]
func (h *ComparisonHandler) Export(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	companyID, ok := c.Locals("company_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company ID not found in context", "MISSING_COMPANY_ID", nil)
	}

	req := dto.ExportComparisonsRequest{
		UserID:    userID,
		CompanyID: companyID,
	}

	filename, content, err := h.comparisonFlow.ExportComparisons(h.createRequestContext(c, "/api/v1/comparisons/export"), &req, metadata)
	if err != nil {
		if businessflow.IsNoComparisonsFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No comparisons to export", "NO_COMPARISONS_FOUND", nil)
		}

		log.Println("Export comparisons failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export comparisons", "EXPORT_COMPARISONS_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(content)
}

func (h *ComparisonHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ComparisonHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
