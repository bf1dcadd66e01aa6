// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/benchmetrics/compscore/app/dto"
	businessflow "github.com/benchmetrics/compscore/business_flow"
	"github.com/benchmetrics/compscore/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// OAuthHandlerInterface defines the contract for OAuth account handlers
type OAuthHandlerInterface interface {
	Connect(c fiber.Ctx) error
	Disconnect(c fiber.Ctx) error
	ListAccounts(c fiber.Ctx) error
}

// OAuthHandler handles ad platform connection HTTP requests
type OAuthHandler struct {
	connectFlow businessflow.OAuthConnectFlow
	validator   *validator.Validate
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(connectFlow businessflow.OAuthConnectFlow) *OAuthHandler {
	return &OAuthHandler{
		connectFlow: connectFlow,
		validator:   validator.New(),
	}
}

func (h *OAuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *OAuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Connect handles connecting a new ad platform account
// @Summary Connect Ad Platform Account
// @Description Store OAuth credentials for an ad platform and start the initial sync
// @Tags OAuth Accounts
// @Accept json
// @Produce json
// @Param request body dto.ConnectOAuthAccountRequest true "Connection data"
// @Success 201 {object} dto.APIResponse{data=dto.ConnectOAuthAccountResponse} "Account connected successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/oauth/accounts [post]
func (h *OAuthHandler) Connect(c fiber.Ctx) error {
	var req dto.ConnectOAuthAccountRequest
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

	result, err := h.connectFlow.Connect(h.createRequestContext(c, "/api/v1/oauth/accounts"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidProvider(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid provider", "INVALID_PROVIDER", nil)
		}
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if businessflow.IsAccessTokenRequired(err) || businessflow.IsAccountIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Missing connection fields", "MISSING_CONNECTION_FIELDS", nil)
		}

		log.Println("Account connection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Account connection failed", "ACCOUNT_CONNECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Account connected successfully", result)
}

// Disconnect handles disconnecting an ad platform account
// @Summary Disconnect Ad Platform Account
// @Description Mark the active connection for the given provider as disconnected
// @Tags OAuth Accounts
// @Produce json
// @Param provider path string true "Provider name"
// @Success 200 {object} dto.APIResponse{data=dto.DisconnectOAuthAccountResponse} "Account disconnected successfully"
// @Failure 400 {object} dto.APIResponse "Invalid provider"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/oauth/accounts/{provider} [delete]
func (h *OAuthHandler) Disconnect(c fiber.Ctx) error {
	provider := c.Params("provider")
	if provider == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Provider is required", "MISSING_PROVIDER", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := dto.DisconnectOAuthAccountRequest{
		UserID:   userID,
		Provider: provider,
	}

	result, err := h.connectFlow.Disconnect(h.createRequestContext(c, "/api/v1/oauth/accounts/:provider"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidProvider(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid provider", "INVALID_PROVIDER", nil)
		}
		if businessflow.IsAccountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}

		log.Println("Account disconnection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Account disconnection failed", "ACCOUNT_DISCONNECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account disconnected successfully", result)
}

// ListAccounts returns the user's connected ad platform accounts
// @Summary List Connected Accounts
// @Tags OAuth Accounts
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListOAuthAccountsResponse} "Accounts retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/oauth/accounts [get]
func (h *OAuthHandler) ListAccounts(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	result, err := h.connectFlow.ListAccounts(h.createRequestContext(c, "/api/v1/oauth/accounts"), userID, metadata)
	if err != nil {
		log.Println("List accounts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list accounts", "LIST_ACCOUNTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Accounts retrieved successfully", result)
}

func (h *OAuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *OAuthHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
