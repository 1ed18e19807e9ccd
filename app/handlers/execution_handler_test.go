package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbyte/boardcast/app/dto"
	businessflow "github.com/riverbyte/boardcast/business_flow"
	"github.com/riverbyte/boardcast/models"
)

// fakeExecutionFlow returns canned responses per method
type fakeExecutionFlow struct {
	executeResp  *dto.ExecuteCampaignResponse
	executeErr   error
	previewResp  *dto.PreviewCampaignResponse
	previewErr   error
	testResp     *dto.TestMessageResponse
	testErr      error
	credResp     *dto.TestCredentialsResponse
	credErr      error
	progressResp *dto.ExecutionProgressResponse
	progressErr  error

	executedCampaignID uint
}

func (f *fakeExecutionFlow) ExecuteCampaign(ctx context.Context, campaignID uint, scheduleID *uint, executionType models.ExecutionType) (*dto.ExecuteCampaignResponse, error) {
	f.executedCampaignID = campaignID
	return f.executeResp, f.executeErr
}

func (f *fakeExecutionFlow) PreviewCampaign(ctx context.Context, campaignID uint) (*dto.PreviewCampaignResponse, error) {
	return f.previewResp, f.previewErr
}

func (f *fakeExecutionFlow) TestMessage(ctx context.Context, req *dto.TestMessageRequest) (*dto.TestMessageResponse, error) {
	return f.testResp, f.testErr
}

func (f *fakeExecutionFlow) TestCredentials(ctx context.Context, req *dto.TestCredentialsRequest) (*dto.TestCredentialsResponse, error) {
	return f.credResp, f.credErr
}

func (f *fakeExecutionFlow) GetExecutionProgress(ctx context.Context, executionUUID string) (*dto.ExecutionProgressResponse, error) {
	return f.progressResp, f.progressErr
}

func newTestApp(flow businessflow.ExecutionFlow) *fiber.App {
	h := NewExecutionHandler(flow)
	app := fiber.New()
	app.Post("/api/v1/campaigns/:id/execute", h.ExecuteCampaign)
	app.Post("/api/v1/campaigns/:id/preview", h.PreviewCampaign)
	app.Post("/api/v1/test-message", h.TestMessage)
	app.Post("/api/v1/configs/test-dispatch", h.TestCredentials)
	app.Get("/api/v1/executions/:uuid/progress", h.GetExecutionProgress)
	return app
}

// apiEnvelope mirrors dto.APIResponse with a typed error for assertions
type apiEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeAPIResponse(t *testing.T, body io.Reader) apiEnvelope {
	t.Helper()
	var resp apiEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestExecuteCampaignHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			executeResp: &dto.ExecuteCampaignResponse{
				ExecutionUUID:   "2f0c8a9e-0000-0000-0000-000000000001",
				CampaignID:      7,
				Status:          "completed",
				TotalRecipients: 3,
				SuccessfulSends: 3,
			},
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/campaigns/7/execute", nil)
		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.True(t, body.Success)
		assert.Equal(t, uint(7), flow.executedCampaignID)
	})

	t.Run("invalid id", func(t *testing.T) {
		app := newTestApp(&fakeExecutionFlow{})

		req := httptest.NewRequest("POST", "/api/v1/campaigns/abc/execute", nil)
		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.Equal(t, "INVALID_CAMPAIGN_ID", body.Error.Code)
	})

	t.Run("campaign not found", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			executeErr: businessflow.NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", businessflow.ErrCampaignNotFound),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/campaigns/7/execute", nil)
		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("credentials missing", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			executeErr: businessflow.NewBusinessError("BOARD_CREDENTIALS_MISSING", "Board credentials are not configured", businessflow.ErrBoardCredentialsMissing),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/campaigns/7/execute", nil)
		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.Equal(t, "CREDENTIALS_MISSING", body.Error.Code)
	})
}

func TestTestMessageHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			testResp: &dto.TestMessageResponse{Phone: "+15551234567", Content: "Hi [TEST]"},
		}
		app := newTestApp(flow)

		payload := `{"phone_number":"5551234567","message_template":"Hi {name}","configuration_id":1}`
		req := httptest.NewRequest("POST", "/api/v1/test-message", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		app := newTestApp(&fakeExecutionFlow{})

		req := httptest.NewRequest("POST", "/api/v1/test-message", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})

	t.Run("invalid phone", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			testErr: businessflow.NewBusinessError("INVALID_PHONE_NUMBER", "Invalid phone number format", businessflow.ErrInvalidPhoneNumber),
		}
		app := newTestApp(flow)

		payload := `{"phone_number":"123","message_template":"Hi","configuration_id":1}`
		req := httptest.NewRequest("POST", "/api/v1/test-message", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeAPIResponse(t, resp.Body)
		assert.Equal(t, "INVALID_PHONE_NUMBER", body.Error.Code)
	})
}

func TestTestCredentialsHandler(t *testing.T) {
	t.Run("invalid key maps to unauthorized", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			credErr: businessflow.NewBusinessError("CREDENTIAL_TEST_FAILED", "Failed to verify provider credentials", assert.AnError),
		}
		app := newTestApp(flow)

		payload := `{"api_key":"bad","sender_phone":"+15550001111"}`
		req := httptest.NewRequest("POST", "/api/v1/configs/test-dispatch", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("warning response passes through", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			credResp: &dto.TestCredentialsResponse{
				Message:          "API key is valid, but no phone numbers found in your account.",
				Warning:          true,
				AvailableNumbers: []string{},
			},
		}
		app := newTestApp(flow)

		payload := `{"api_key":"k","sender_phone":"+15550001111"}`
		req := httptest.NewRequest("POST", "/api/v1/configs/test-dispatch", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestGetExecutionProgressHandler(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			progressErr: businessflow.NewBusinessError("EXECUTION_NOT_FOUND", "Execution not found", businessflow.ErrExecutionNotFound),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("GET", "/api/v1/executions/abc/progress", nil)
		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		flow := &fakeExecutionFlow{
			progressResp: &dto.ExecutionProgressResponse{ExecutionID: 1, Status: "running", Total: 10, Processed: 4, Sent: 4},
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("GET", "/api/v1/executions/2f0c8a9e/progress", nil)
		resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
