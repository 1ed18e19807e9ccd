package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/riverbyte/boardcast/app/dto"
	"github.com/riverbyte/boardcast/utils"
)

// previewLog accumulates a timestamped trail the UI shows alongside the
// recipient list, mirroring the executor's narrowing steps.
type previewLog struct {
	lines []string
}

func (l *previewLog) addf(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", time.Now().UTC().Format("15:04:05"), fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
}

// PreviewCampaign runs the executor's fetch/filter/render pipeline without
// dispatching anything and reports who would receive what.
func (s *ExecutionFlowImpl) PreviewCampaign(ctx context.Context, campaignID uint) (*dto.PreviewCampaignResponse, error) {
	campaign, err := s.campaignRepo.ByIDWithRelations(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	cfg := campaign.Configuration
	if cfg == nil {
		return nil, NewBusinessError("CONFIGURATION_NOT_FOUND", "Campaign has no configuration", ErrConfigurationNotFound)
	}
	if !cfg.HasBoardCredentials() {
		return nil, NewBusinessError("BOARD_CREDENTIALS_MISSING", "Board credentials are not configured", ErrBoardCredentialsMissing)
	}

	trail := &previewLog{}
	trail.addf("Fetching rows from board %s, group %s...", cfg.BoardID, cfg.GroupID)

	fetch, err := s.boardClient.FetchGroupRows(ctx, cfg.BoardAPIKey, cfg.BoardID, cfg.GroupID)
	if err != nil {
		return nil, NewBusinessError("BOARD_FETCH_FAILED", "Failed to fetch board rows", fmt.Errorf("%w: %v", ErrBoardFetchFailed, err))
	}
	trail.addf("Pagination complete: %d total rows from %d page(s)", len(fetch.Rows), fetch.Pages)
	if fetch.Partial {
		trail.addf("Warning: fetch was partial after page %d: %s", fetch.Pages, fetch.PartialReason)
	}
	if fetch.Truncated {
		trail.addf("Warning: reached the page cap, rows beyond it were not fetched")
	}

	rows := fetch.Rows
	if len(campaign.SelectedItems) > 0 {
		trail.addf("Applying batch selection filter (%d selected rows)...", len(campaign.SelectedItems))
		rows = campaign.ApplySelectedItems(rows)
		trail.addf("After batch selection: %d rows", len(rows))
	}

	if len(campaign.Filters) > 0 {
		before := len(rows)
		trail.addf("Applying %d advanced filter(s)...", len(campaign.Filters))
		for i, f := range campaign.Filters {
			trail.addf("  Filter %d: %s", i+1, f.String())
		}
		rows = campaign.Filters.Apply(rows)
		trail.addf("After advanced filters: %d rows (filtered out %d)", len(rows), before-len(rows))
	}

	trail.addf("Applying basic filter: %s = %q", campaign.StatusColumn, campaign.StatusValue)
	trail.addf("Phone column: %s", campaign.PhoneColumn)

	recipients := make([]dto.PreviewRecipient, 0, len(rows))
	matched := 0
	invalidPhones := 0

	for _, row := range rows {
		if !campaign.RowEligible(row) {
			continue
		}
		matched++

		phone := utils.NormalizePhone(row.ColumnText(campaign.PhoneColumn))
		if phone == "" {
			invalidPhones++
			continue
		}

		rendered := utils.RenderTemplate(campaign.MessageTemplate, templateFields(row))
		recipients = append(recipients, dto.PreviewRecipient{
			ItemName:      row.Name,
			RecipientName: recipientName(row),
			Phone:         phone,
			Message:       rendered.Message,
		})
	}

	trail.addf("After basic filter: %d rows matched", matched)
	if invalidPhones > 0 {
		trail.addf("Valid phone numbers: %d (%d invalid phones excluded)", len(recipients), invalidPhones)
	} else {
		trail.addf("Valid phone numbers: %d", len(recipients))
	}
	trail.addf("Preview generated successfully: %d final recipients", len(recipients))

	var filtersInfo *string
	if desc := campaign.Filters.Describe(); desc != "" {
		filtersInfo = &desc
	}

	return &dto.PreviewCampaignResponse{
		CampaignID:  campaign.ID,
		Recipients:  recipients,
		FiltersInfo: filtersInfo,
		Logs:        trail.lines,
	}, nil
}

// TestMessage renders a template in test mode and performs one real send,
// validating provider credentials end to end.
func (s *ExecutionFlowImpl) TestMessage(ctx context.Context, req *dto.TestMessageRequest) (*dto.TestMessageResponse, error) {
	cfg, err := s.configRepo.ByID(ctx, req.ConfigurationID)
	if err != nil {
		return nil, NewBusinessError("CONFIGURATION_LOOKUP_FAILED", "Failed to load configuration", err)
	}
	if cfg == nil {
		return nil, NewBusinessError("CONFIGURATION_NOT_FOUND", "Configuration not found", ErrConfigurationNotFound)
	}
	if !cfg.HasDispatchCredentials() {
		return nil, NewBusinessError("DISPATCH_CREDENTIALS_MISSING", "Provider API key or sender phone not configured", ErrDispatchCredentialsMissing)
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	if phone == "" {
		return nil, NewBusinessError("INVALID_PHONE_NUMBER", "Invalid phone number format. Use a 10-digit US number or international format with +", ErrInvalidPhoneNumber)
	}

	rendered := utils.RenderTestTemplate(req.MessageTemplate)
	result := s.dispatchClient.SendMessage(ctx, cfg.DispatchAPIKey, cfg.SenderPhone, phone, rendered.Message)
	if !result.Success {
		return nil, NewBusinessError("TEST_SEND_FAILED", result.ErrorMessage, ErrTestSendFailed)
	}

	return &dto.TestMessageResponse{
		Phone:   phone,
		Content: rendered.Message,
	}, nil
}

// TestCredentials verifies an API key by listing the account's sender
// numbers. A valid key with an unknown sender phone is a success with a
// warning, not a failure.
func (s *ExecutionFlowImpl) TestCredentials(ctx context.Context, req *dto.TestCredentialsRequest) (*dto.TestCredentialsResponse, error) {
	numbers, err := s.dispatchClient.ListSenderNumbers(ctx, req.APIKey)
	if err != nil {
		return nil, NewBusinessError("CREDENTIAL_TEST_FAILED", "Failed to verify provider credentials", err)
	}

	available := make([]string, 0, len(numbers))
	senderFound := false
	for _, n := range numbers {
		if n.PhoneNumber == req.SenderPhone || n.FormattedNumber == req.SenderPhone {
			senderFound = true
		}
		if n.PhoneNumber != "" {
			available = append(available, n.PhoneNumber)
		} else {
			available = append(available, n.FormattedNumber)
		}
	}

	if len(numbers) == 0 {
		return &dto.TestCredentialsResponse{
			Message:          "API key is valid, but no phone numbers found in your account.",
			Warning:          true,
			AvailableNumbers: []string{},
		}, nil
	}
	if !senderFound {
		return &dto.TestCredentialsResponse{
			Message:          fmt.Sprintf("API key is valid. Warning: sender phone %s not found in your account.", req.SenderPhone),
			Warning:          true,
			AvailableNumbers: available,
		}, nil
	}
	return &dto.TestCredentialsResponse{
		Message:          "Provider configuration is valid! API key and sender phone verified.",
		AvailableNumbers: available,
	}, nil
}

// GetExecutionProgress returns the live Redis snapshot for a running
// execution, falling back to the persisted record when none exists.
func (s *ExecutionFlowImpl) GetExecutionProgress(ctx context.Context, executionUUID string) (*dto.ExecutionProgressResponse, error) {
	execution, err := s.executionRepo.ByUUID(ctx, executionUUID)
	if err != nil {
		return nil, NewBusinessError("EXECUTION_LOOKUP_FAILED", "Failed to load execution", err)
	}
	if execution == nil {
		return nil, NewBusinessError("EXECUTION_NOT_FOUND", "Execution not found", ErrExecutionNotFound)
	}

	if snapshot, err := s.progress.Get(ctx, execution.ID); err == nil && snapshot != nil {
		return &dto.ExecutionProgressResponse{
			ExecutionID: snapshot.ExecutionID,
			CampaignID:  snapshot.CampaignID,
			Status:      snapshot.Status,
			Total:       snapshot.Total,
			Processed:   snapshot.Processed,
			Sent:        snapshot.Sent,
			Failed:      snapshot.Failed,
		}, nil
	}

	return &dto.ExecutionProgressResponse{
		ExecutionID: execution.ID,
		CampaignID:  execution.CampaignID,
		Status:      execution.Status.String(),
		Total:       execution.TotalRecipients,
		Processed:   execution.TotalRecipients,
		Sent:        execution.SuccessfulSends,
		Failed:      execution.FailedSends,
	}, nil
}
