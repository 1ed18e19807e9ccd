// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/riverbyte/boardcast/app/dto"
	businessflow "github.com/riverbyte/boardcast/business_flow"
	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/utils"
)

// ExecutionHandlerInterface defines the contract for execution handlers
type ExecutionHandlerInterface interface {
	ExecuteCampaign(c fiber.Ctx) error
	PreviewCampaign(c fiber.Ctx) error
	TestMessage(c fiber.Ctx) error
	TestCredentials(c fiber.Ctx) error
	GetExecutionProgress(c fiber.Ctx) error
}

// ExecutionHandler handles campaign execution HTTP requests
type ExecutionHandler struct {
	executionFlow businessflow.ExecutionFlow
	validator     *validator.Validate
}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(executionFlow businessflow.ExecutionFlow) *ExecutionHandler {
	return &ExecutionHandler{
		executionFlow: executionFlow,
		validator:     validator.New(),
	}
}

func (h *ExecutionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ExecutionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ExecuteCampaign runs a campaign immediately and blocks until it finishes
func (h *ExecutionHandler) ExecuteCampaign(c fiber.Ctx) error {
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_CAMPAIGN_ID", err.Error())
	}

	// Manual runs can outlast typical request timeouts; the delay between
	// sends alone makes large campaigns slow. Budget generously.
	ctx, cancel := h.createRequestContext(c, 30*time.Minute)
	defer cancel()

	result, err := h.executionFlow.ExecuteCampaign(ctx, campaignID, nil, models.ExecutionTypeManual)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Configuration not found", "CONFIGURATION_NOT_FOUND", nil)
		}
		if businessflow.IsCredentialsMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Configuration is incomplete", "CREDENTIALS_MISSING", err.Error())
		}

		log.Println("Campaign execution failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign execution failed", "CAMPAIGN_EXECUTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign executed", result)
}

// PreviewCampaign dry-runs a campaign and returns the would-be recipients
func (h *ExecutionHandler) PreviewCampaign(c fiber.Ctx) error {
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_CAMPAIGN_ID", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, 2*time.Minute)
	defer cancel()

	result, err := h.executionFlow.PreviewCampaign(ctx, campaignID)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Configuration not found", "CONFIGURATION_NOT_FOUND", nil)
		}
		if businessflow.IsCredentialsMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Configuration is incomplete", "CREDENTIALS_MISSING", err.Error())
		}

		log.Println("Campaign preview failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign preview failed", "CAMPAIGN_PREVIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Preview generated", result)
}

// TestMessage sends one real message with every template token replaced by a placeholder
func (h *ExecutionHandler) TestMessage(c fiber.Ctx) error {
	var req dto.TestMessageRequest
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

	ctx, cancel := h.createRequestContext(c, time.Minute)
	defer cancel()

	result, err := h.executionFlow.TestMessage(ctx, &req)
	if err != nil {
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Configuration not found", "CONFIGURATION_NOT_FOUND", nil)
		}
		if businessflow.IsCredentialsMissing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Configuration is incomplete", "CREDENTIALS_MISSING", err.Error())
		}
		if businessflow.IsInvalidPhoneNumber(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phone number format", "INVALID_PHONE_NUMBER", err.Error())
		}

		log.Println("Test message failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send test message", "TEST_MESSAGE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Test message sent successfully", result)
}

// TestCredentials verifies provider credentials by listing sender numbers
func (h *ExecutionHandler) TestCredentials(c fiber.Ctx) error {
	var req dto.TestCredentialsRequest
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

	ctx, cancel := h.createRequestContext(c, time.Minute)
	defer cancel()

	result, err := h.executionFlow.TestCredentials(ctx, &req)
	if err != nil {
		log.Println("Credential test failed", err)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Failed to verify provider credentials", "CREDENTIAL_TEST_FAILED", err.Error())
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetExecutionProgress reports live progress of an execution
func (h *ExecutionHandler) GetExecutionProgress(c fiber.Ctx) error {
	executionUUID := c.Params("uuid")
	if executionUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Execution UUID is required", "MISSING_EXECUTION_UUID", nil)
	}

	ctx, cancel := h.createRequestContext(c, 10*time.Second)
	defer cancel()

	result, err := h.executionFlow.GetExecutionProgress(ctx, executionUUID)
	if err != nil {
		if businessflow.IsExecutionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Execution not found", "EXECUTION_NOT_FOUND", nil)
		}

		log.Println("Execution progress lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load execution progress", "EXECUTION_PROGRESS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Execution progress", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ExecutionHandler) createRequestContext(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, c.Path())

	return ctx, cancel
}

func parseIDParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}
