package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riverbyte/boardcast/app/dto"
	"github.com/riverbyte/boardcast/app/services"
	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/repository"
	"github.com/riverbyte/boardcast/utils"
)

var (
	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_executions_total",
			Help: "Total number of campaign executions by final status",
		},
		[]string{"status"},
	)

	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_messages_total",
			Help: "Total number of campaign messages by dispatch outcome",
		},
		[]string{"status"},
	)
)

// ExecutionFlow handles campaign run, preview and test-send business logic
type ExecutionFlow interface {
	ExecuteCampaign(ctx context.Context, campaignID uint, scheduleID *uint, executionType models.ExecutionType) (*dto.ExecuteCampaignResponse, error)
	PreviewCampaign(ctx context.Context, campaignID uint) (*dto.PreviewCampaignResponse, error)
	TestMessage(ctx context.Context, req *dto.TestMessageRequest) (*dto.TestMessageResponse, error)
	TestCredentials(ctx context.Context, req *dto.TestCredentialsRequest) (*dto.TestCredentialsResponse, error)
	GetExecutionProgress(ctx context.Context, executionUUID string) (*dto.ExecutionProgressResponse, error)
}

// ExecutionFlowImpl implements the execution business flow
type ExecutionFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	configRepo     repository.ConfigurationRepository
	scheduleRepo   repository.ScheduleRepository
	executionRepo  repository.ExecutionRepository
	messageLogRepo repository.MessageLogRepository
	boardClient    services.BoardClient
	dispatchClient services.DispatchClient
	progress       services.ProgressTracker

	// pause between consecutive sends; tests shorten it
	sendDelay time.Duration
}

// NewExecutionFlow creates a new execution flow instance
func NewExecutionFlow(
	campaignRepo repository.CampaignRepository,
	configRepo repository.ConfigurationRepository,
	scheduleRepo repository.ScheduleRepository,
	executionRepo repository.ExecutionRepository,
	messageLogRepo repository.MessageLogRepository,
	boardClient services.BoardClient,
	dispatchClient services.DispatchClient,
	progress services.ProgressTracker,
	sendDelay time.Duration,
) ExecutionFlow {
	if progress == nil {
		progress = services.NoopProgressTracker{}
	}
	return &ExecutionFlowImpl{
		campaignRepo:   campaignRepo,
		configRepo:     configRepo,
		scheduleRepo:   scheduleRepo,
		executionRepo:  executionRepo,
		messageLogRepo: messageLogRepo,
		boardClient:    boardClient,
		dispatchClient: dispatchClient,
		progress:       progress,
		sendDelay:      sendDelay,
	}
}

const dispatchProviderName = "openphone"

// ExecuteCampaign runs one campaign end to end: fetch rows, narrow them down,
// send one message per eligible row with a fixed delay in between, and
// persist the accounting. Credential problems surface before an execution
// record ever reaches running.
func (s *ExecutionFlowImpl) ExecuteCampaign(ctx context.Context, campaignID uint, scheduleID *uint, executionType models.ExecutionType) (*dto.ExecuteCampaignResponse, error) {
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
	if !cfg.HasDispatchCredentials() {
		return nil, NewBusinessError("DISPATCH_CREDENTIALS_MISSING", "Provider API key or sender phone not configured", ErrDispatchCredentialsMissing)
	}

	execution := &models.Execution{
		UUID:       uuid.New(),
		CampaignID: campaign.ID,
		ScheduleID: scheduleID,
		Type:       executionType,
		Status:     models.ExecutionStatusPending,
	}
	if err := s.executionRepo.Save(ctx, execution); err != nil {
		return nil, NewBusinessError("EXECUTION_CREATE_FAILED", "Failed to create execution record", err)
	}

	execution.Status = models.ExecutionStatusRunning
	execution.StartedAt = utils.UTCNowPtr()
	if err := s.executionRepo.Update(ctx, execution); err != nil {
		return nil, NewBusinessError("EXECUTION_UPDATE_FAILED", "Failed to start execution", err)
	}
	s.publishProgress(ctx, execution, 0)

	fetch, err := s.boardClient.FetchGroupRows(ctx, cfg.BoardAPIKey, cfg.BoardID, cfg.GroupID)
	if err != nil {
		s.finalizeExecution(ctx, execution, models.ExecutionStatusFailed, 0, 0, utils.ToPtr(fmt.Sprintf("Board fetch failed: %v", err)))
		return nil, NewBusinessError("BOARD_FETCH_FAILED", "Failed to fetch board rows", fmt.Errorf("%w: %v", ErrBoardFetchFailed, err))
	}
	if fetch.Partial {
		log.Printf("campaign %d: partial board fetch after page %d: %s", campaign.ID, fetch.Pages, fetch.PartialReason)
	}

	candidates := campaign.ApplySelectedItems(fetch.Rows)
	candidates = campaign.Filters.Apply(candidates)

	log.Printf("campaign %d: %d rows fetched, %d candidates after filters (%s = %q, phone column %s)",
		campaign.ID, len(fetch.Rows), len(candidates), campaign.StatusColumn, campaign.StatusValue, campaign.PhoneColumn)

	// Persist the candidate count before any send so progress is observable.
	execution.TotalRecipients = len(candidates)
	if err := s.executionRepo.Update(ctx, execution); err != nil {
		return nil, NewBusinessError("EXECUTION_UPDATE_FAILED", "Failed to record recipient count", err)
	}
	s.publishProgress(ctx, execution, 0)

	sent := 0
	failed := 0
	var failureReasons []string

	for i, row := range candidates {
		// The basic condition is rechecked per row against the two live
		// columns: advanced filters may have matched on other columns.
		if !campaign.RowEligible(row) {
			s.publishProgressCounts(ctx, execution, i+1, sent, failed)
			continue
		}

		phone := utils.NormalizePhone(row.ColumnText(campaign.PhoneColumn))
		if phone == "" {
			s.publishProgressCounts(ctx, execution, i+1, sent, failed)
			continue
		}

		rendered := utils.RenderTemplate(campaign.MessageTemplate, templateFields(row))
		result := s.dispatchClient.SendMessage(ctx, cfg.DispatchAPIKey, cfg.SenderPhone, phone, rendered.Message)

		logEntry := &models.MessageLog{
			ExecutionID:    execution.ID,
			CampaignID:     campaign.ID,
			RecipientPhone: phone,
			RecipientName:  rowTitle(row),
			Content:        rendered.Message,
			Provider:       dispatchProviderName,
		}
		if result.Success {
			sent++
			messagesTotal.WithLabelValues(models.MessageLogStatusSent.String()).Inc()
			logEntry.Status = models.MessageLogStatusSent
			logEntry.SentAt = utils.UTCNowPtr()
			if result.MessageID != "" {
				logEntry.ProviderMessageID = &result.MessageID
			}
		} else {
			failed++
			messagesTotal.WithLabelValues(models.MessageLogStatusFailed.String()).Inc()
			logEntry.Status = models.MessageLogStatusFailed
			logEntry.ErrorMessage = &result.ErrorMessage
			failureReasons = append(failureReasons, fmt.Sprintf("%s: %s", phone, result.ErrorMessage))
		}
		if err := s.messageLogRepo.Save(ctx, logEntry); err != nil {
			log.Printf("campaign %d: failed to save message log for %s: %v", campaign.ID, phone, err)
		}
		s.publishProgressCounts(ctx, execution, i+1, sent, failed)

		if i < len(candidates)-1 && s.sendDelay > 0 {
			time.Sleep(s.sendDelay)
		}
	}

	status := models.ExecutionStatusCompleted
	if failed > 0 && sent == 0 {
		status = models.ExecutionStatusFailed
	}
	note := composeNote(campaign.Filters, failureReasons)
	s.finalizeExecution(ctx, execution, status, sent, failed, note)

	if scheduleID != nil {
		if err := s.retireOnceSchedule(ctx, campaign.ID, *scheduleID); err != nil {
			log.Printf("campaign %d: failed to retire once schedule %d: %v", campaign.ID, *scheduleID, err)
		}
	}

	return &dto.ExecuteCampaignResponse{
		ExecutionUUID:   execution.UUID.String(),
		CampaignID:      campaign.ID,
		Status:          execution.Status.String(),
		TotalRecipients: execution.TotalRecipients,
		SuccessfulSends: execution.SuccessfulSends,
		FailedSends:     execution.FailedSends,
		Note:            execution.Note,
		StartedAt:       execution.StartedAt,
		CompletedAt:     execution.CompletedAt,
	}, nil
}

func (s *ExecutionFlowImpl) finalizeExecution(ctx context.Context, execution *models.Execution, status models.ExecutionStatus, sent, failed int, note *string) {
	execution.Status = status
	execution.CompletedAt = utils.UTCNowPtr()
	execution.SuccessfulSends = sent
	execution.FailedSends = failed
	execution.Note = note
	if err := s.executionRepo.Update(ctx, execution); err != nil {
		log.Printf("execution %d: failed to finalize: %v", execution.ID, err)
	}
	executionsTotal.WithLabelValues(status.String()).Inc()
	s.publishProgressCounts(ctx, execution, execution.TotalRecipients, sent, failed)
}

// retireOnceSchedule deactivates a fired "once" schedule and, when that was
// the campaign's last active schedule, the campaign itself.
func (s *ExecutionFlowImpl) retireOnceSchedule(ctx context.Context, campaignID, scheduleID uint) error {
	schedule, err := s.scheduleRepo.ByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if schedule == nil || schedule.Type != models.ScheduleTypeOnce {
		return nil
	}

	if err := s.scheduleRepo.Deactivate(ctx, scheduleID); err != nil {
		return err
	}
	active, err := s.scheduleRepo.CountActiveByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if active == 0 {
		log.Printf("campaign %d: all schedules retired, deactivating campaign", campaignID)
		return s.campaignRepo.Deactivate(ctx, campaignID)
	}
	return nil
}

func (s *ExecutionFlowImpl) publishProgress(ctx context.Context, execution *models.Execution, processed int) {
	s.publishProgressCounts(ctx, execution, processed, execution.SuccessfulSends, execution.FailedSends)
}

func (s *ExecutionFlowImpl) publishProgressCounts(ctx context.Context, execution *models.Execution, processed, sent, failed int) {
	s.progress.Publish(ctx, services.ExecutionProgress{
		ExecutionID: execution.ID,
		CampaignID:  execution.CampaignID,
		Status:      execution.Status.String(),
		Total:       execution.TotalRecipients,
		Processed:   processed,
		Sent:        sent,
		Failed:      failed,
		UpdatedAt:   utils.UTCNow().Format(time.RFC3339),
	})
}

func composeNote(filters models.FilterConditions, failureReasons []string) *string {
	var parts []string
	if desc := filters.Describe(); desc != "" {
		parts = append(parts, "Applied "+desc)
	}
	if len(failureReasons) > 0 {
		reasons := failureReasons
		if len(reasons) > utils.MaxFailureReasons {
			reasons = reasons[:utils.MaxFailureReasons]
		}
		parts = append(parts, "Failures: "+strings.Join(reasons, "; "))
	}
	if len(parts) == 0 {
		return nil
	}
	return utils.ToPtr(strings.Join(parts, ". "))
}

func templateFields(row models.BoardRow) []utils.TemplateField {
	fields := make([]utils.TemplateField, 0, len(row.ColumnValues))
	for _, cv := range row.ColumnValues {
		fields = append(fields, utils.TemplateField{ID: cv.ID, Text: cv.Text})
	}
	return fields
}

func rowTitle(row models.BoardRow) string {
	if row.Name != "" {
		return row.Name
	}
	return "Unknown"
}

// recipientName prefers a name-ish column and falls back to the row title
func recipientName(row models.BoardRow) string {
	for _, cv := range row.ColumnValues {
		if cv.Text == "" {
			continue
		}
		if strings.Contains(cv.ID, "name") || strings.Contains(cv.ID, "text") {
			return cv.Text
		}
	}
	return rowTitle(row)
}
