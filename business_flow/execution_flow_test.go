package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/riverbyte/boardcast/app/services"
	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eligibleRow(id, name, phone string) models.BoardRow {
	return models.BoardRow{
		ID:   id,
		Name: name,
		ColumnValues: []models.ColumnValue{
			{ID: "status", Text: "Ready"},
			{ID: "phone", Text: phone},
			{ID: "first_name", Text: name},
		},
	}
}

func testConfiguration() *models.Configuration {
	return &models.Configuration{
		ID:             1,
		UUID:           uuid.New(),
		Name:           "Test workspace",
		BoardID:        "123",
		GroupID:        "group_a",
		BoardAPIKey:    "board-key",
		DispatchAPIKey: "dispatch-key",
		SenderPhone:    "+15550001111",
	}
}

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:              1,
		UUID:            uuid.New(),
		ConfigurationID: 1,
		Name:            "Welcome blast",
		StatusColumn:    "status",
		StatusValue:     "Ready",
		PhoneColumn:     "phone",
		MessageTemplate: "Hi {first_name}!",
		IsActive:        utils.ToPtr(true),
		Configuration:   testConfiguration(),
	}
}

type flowFixture struct {
	flow         ExecutionFlow
	campaignRepo *fakeCampaignRepo
	configRepo   *fakeConfigurationRepo
	scheduleRepo *fakeScheduleRepo
	execRepo     *fakeExecutionRepo
	logRepo      *fakeMessageLogRepo
	board        *services.MockBoardClient
	dispatch     *services.MockDispatchClient
	tracker      *recordingTracker
}

func newFlowFixture(campaign *models.Campaign, rows []models.BoardRow) *flowFixture {
	f := &flowFixture{
		campaignRepo: newFakeCampaignRepo(),
		configRepo:   newFakeConfigurationRepo(),
		scheduleRepo: newFakeScheduleRepo(),
		execRepo:     newFakeExecutionRepo(),
		logRepo:      &fakeMessageLogRepo{},
		board:        services.NewMockBoardClient(&services.BoardFetchResult{Rows: rows, Pages: 1}, nil),
		dispatch:     services.NewMockDispatchClient(),
		tracker:      &recordingTracker{},
	}
	if campaign != nil {
		f.campaignRepo.campaigns[campaign.ID] = campaign
		if campaign.Configuration != nil {
			f.configRepo.configs[campaign.Configuration.ID] = campaign.Configuration
		}
		for i := range campaign.Schedules {
			f.scheduleRepo.schedules[campaign.Schedules[i].ID] = &campaign.Schedules[i]
		}
	}
	f.flow = NewExecutionFlow(
		f.campaignRepo, f.configRepo, f.scheduleRepo, f.execRepo, f.logRepo,
		f.board, f.dispatch, f.tracker,
		0, // no inter-send delay in tests
	)
	return f
}

func TestExecuteCampaignHappyPath(t *testing.T) {
	rows := []models.BoardRow{
		eligibleRow("1", "Alice", "5551234567"),
		eligibleRow("2", "Bob", "5559876543"),
	}
	f := newFlowFixture(testCampaign(), rows)

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 2, resp.TotalRecipients)
	assert.Equal(t, 2, resp.SuccessfulSends)
	assert.Equal(t, 0, resp.FailedSends)
	assert.Nil(t, resp.Note)
	assert.NotNil(t, resp.StartedAt)
	assert.NotNil(t, resp.CompletedAt)

	require.Len(t, f.dispatch.Sent, 2)
	assert.Equal(t, "+15550001111", f.dispatch.Sent[0].From)
	assert.Equal(t, "+15551234567", f.dispatch.Sent[0].To)
	assert.Equal(t, "Hi Alice!", f.dispatch.Sent[0].Content)

	require.Len(t, f.logRepo.logs, 2)
	assert.Equal(t, models.MessageLogStatusSent, f.logRepo.logs[0].Status)
	assert.Equal(t, "Alice", f.logRepo.logs[0].RecipientName)
	assert.Equal(t, "openphone", f.logRepo.logs[0].Provider)
	assert.NotNil(t, f.logRepo.logs[0].ProviderMessageID)
	assert.NotNil(t, f.logRepo.logs[0].SentAt)

	// Board was queried with the configuration's credentials
	require.Len(t, f.board.Calls, 1)
	assert.Equal(t, "board-key", f.board.Calls[0].APIKey)
	assert.Equal(t, "123", f.board.Calls[0].BoardID)
	assert.Equal(t, "group_a", f.board.Calls[0].GroupID)
}

func TestExecuteCampaignRecipientCountPersistedBeforeSends(t *testing.T) {
	rows := []models.BoardRow{eligibleRow("1", "Alice", "5551234567")}
	f := newFlowFixture(testCampaign(), rows)

	_, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	// Update sequence: running, recipient count, final. The count lands
	// while the run is still in flight, before the last send finishes.
	require.GreaterOrEqual(t, len(f.execRepo.updates), 3)
	counted := f.execRepo.updates[1]
	assert.Equal(t, models.ExecutionStatusRunning, counted.Status)
	assert.Equal(t, 1, counted.TotalRecipients)
	assert.Equal(t, 0, counted.SuccessfulSends)
}

func TestExecuteCampaignValidationErrors(t *testing.T) {
	t.Run("campaign not found", func(t *testing.T) {
		f := newFlowFixture(nil, nil)
		_, err := f.flow.ExecuteCampaign(context.Background(), 42, nil, models.ExecutionTypeManual)
		require.Error(t, err)
		assert.True(t, IsCampaignNotFound(err))
		assert.Empty(t, f.execRepo.executions)
	})

	t.Run("missing configuration", func(t *testing.T) {
		campaign := testCampaign()
		campaign.Configuration = nil
		f := newFlowFixture(campaign, nil)
		_, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
		require.Error(t, err)
		assert.True(t, IsConfigurationNotFound(err))
		assert.Empty(t, f.execRepo.executions)
	})

	t.Run("missing board credentials", func(t *testing.T) {
		campaign := testCampaign()
		campaign.Configuration.BoardAPIKey = ""
		f := newFlowFixture(campaign, nil)
		_, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
		require.Error(t, err)
		assert.True(t, IsCredentialsMissing(err))
		assert.Empty(t, f.execRepo.executions)
	})

	t.Run("missing dispatch credentials", func(t *testing.T) {
		campaign := testCampaign()
		campaign.Configuration.SenderPhone = ""
		f := newFlowFixture(campaign, nil)
		_, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
		require.Error(t, err)
		assert.True(t, IsCredentialsMissing(err))
		assert.Empty(t, f.execRepo.executions)
	})
}

func TestExecuteCampaignBoardFetchFailure(t *testing.T) {
	f := newFlowFixture(testCampaign(), nil)
	f.board.Result = nil
	f.board.Err = fmt.Errorf("board API returned HTTP 500")

	_, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBoardFetchFailed))

	// The execution record is finalized as failed with the fetch error noted
	require.Len(t, f.execRepo.executions, 1)
	final := f.execRepo.updates[len(f.execRepo.updates)-1]
	assert.Equal(t, models.ExecutionStatusFailed, final.Status)
	require.NotNil(t, final.Note)
	assert.Contains(t, *final.Note, "Board fetch failed")
	assert.Empty(t, f.logRepo.logs)
}

func TestExecuteCampaignSilentSkips(t *testing.T) {
	ineligible := eligibleRow("2", "Bob", "5559876543")
	ineligible.ColumnValues[0].Text = "Paused" // fails the live status recheck

	noPhone := eligibleRow("3", "Carol", "")
	badPhone := eligibleRow("4", "Dave", "12345")

	rows := []models.BoardRow{
		eligibleRow("1", "Alice", "5551234567"),
		ineligible,
		noPhone,
		badPhone,
	}

	campaign := testCampaign()
	// Filters match everything so all four rows become candidates
	f := newFlowFixture(campaign, rows)

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	// Skipped rows count toward the recipient total but are neither sent
	// nor failed, and leave no message log behind.
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 4, resp.TotalRecipients)
	assert.Equal(t, 1, resp.SuccessfulSends)
	assert.Equal(t, 0, resp.FailedSends)
	assert.Len(t, f.logRepo.logs, 1)
	assert.Len(t, f.dispatch.Sent, 1)
}

func TestExecuteCampaignPartialFailureCompletes(t *testing.T) {
	rows := []models.BoardRow{
		eligibleRow("1", "Alice", "5551234567"),
		eligibleRow("2", "Bob", "5559876543"),
	}
	f := newFlowFixture(testCampaign(), rows)
	f.dispatch.Results["+15559876543"] = services.SendResult{
		ErrorKind:    services.DispatchErrRateLimited,
		ErrorMessage: "Rate Limited: Too many requests",
	}

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, resp.SuccessfulSends)
	assert.Equal(t, 1, resp.FailedSends)
	require.NotNil(t, resp.Note)
	assert.Contains(t, *resp.Note, "Failures: +15559876543: Rate Limited: Too many requests")

	require.Len(t, f.logRepo.logs, 2)
	assert.Equal(t, models.MessageLogStatusFailed, f.logRepo.logs[1].Status)
	require.NotNil(t, f.logRepo.logs[1].ErrorMessage)
}

func TestExecuteCampaignAllSendsFailedMarksFailed(t *testing.T) {
	rows := []models.BoardRow{eligibleRow("1", "Alice", "5551234567")}
	f := newFlowFixture(testCampaign(), rows)
	f.dispatch.Results["+15551234567"] = services.SendResult{
		ErrorKind:    services.DispatchErrUnauthorized,
		ErrorMessage: "Unauthorized: Invalid provider API key",
	}

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, 0, resp.SuccessfulSends)
	assert.Equal(t, 1, resp.FailedSends)
}

func TestExecuteCampaignZeroRecipientsCompletes(t *testing.T) {
	f := newFlowFixture(testCampaign(), nil)

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 0, resp.TotalRecipients)
	assert.Empty(t, f.dispatch.Sent)
}

func TestExecuteCampaignNoteCapsFailureReasons(t *testing.T) {
	var rows []models.BoardRow
	f := newFlowFixture(testCampaign(), nil)
	for i := 0; i < 15; i++ {
		phone := fmt.Sprintf("555123%04d", i)
		rows = append(rows, eligibleRow(fmt.Sprintf("%d", i+1), "Row", phone))
		f.dispatch.Results["+1"+phone] = services.SendResult{
			ErrorKind:    services.DispatchErrServer,
			ErrorMessage: "Provider Server Error: Please try again later",
		}
	}
	f.board.Result = &services.BoardFetchResult{Rows: rows, Pages: 1}

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	assert.Equal(t, 15, resp.FailedSends)
	require.NotNil(t, resp.Note)
	// Only the first ten reasons are kept
	assert.Equal(t, 10, strings.Count(*resp.Note, "Provider Server Error"))
}

func TestExecuteCampaignFiltersAndNote(t *testing.T) {
	campaign := testCampaign()
	campaign.Filters = models.FilterConditions{
		{ColumnID: "first_name", Operator: models.FilterOperatorEquals, Value: "Alice"},
	}
	rows := []models.BoardRow{
		eligibleRow("1", "Alice", "5551234567"),
		eligibleRow("2", "Bob", "5559876543"),
	}
	f := newFlowFixture(campaign, rows)

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	// Bob never becomes a candidate: the filter narrows before any send
	assert.Equal(t, 1, resp.TotalRecipients)
	assert.Equal(t, 1, resp.SuccessfulSends)
	require.NotNil(t, resp.Note)
	assert.Equal(t, `Applied 1 filters: first_name equals "Alice"`, *resp.Note)
}

func TestExecuteCampaignSelectedItems(t *testing.T) {
	campaign := testCampaign()
	campaign.SelectedItems = []string{"2"}
	rows := []models.BoardRow{
		eligibleRow("1", "Alice", "5551234567"),
		eligibleRow("2", "Bob", "5559876543"),
	}
	f := newFlowFixture(campaign, rows)

	resp, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TotalRecipients)
	require.Len(t, f.dispatch.Sent, 1)
	assert.Equal(t, "+15559876543", f.dispatch.Sent[0].To)
}

func TestExecuteCampaignRetiresOnceSchedule(t *testing.T) {
	t.Run("last once schedule deactivates campaign", func(t *testing.T) {
		campaign := testCampaign()
		campaign.Schedules = []models.Schedule{
			{ID: 10, CampaignID: 1, Type: models.ScheduleTypeOnce, Day: "2026-06-15", Time: "09:30", IsActive: utils.ToPtr(true)},
		}
		f := newFlowFixture(campaign, nil)

		scheduleID := uint(10)
		_, err := f.flow.ExecuteCampaign(context.Background(), 1, &scheduleID, models.ExecutionTypeScheduled)
		require.NoError(t, err)

		assert.Contains(t, f.scheduleRepo.deactivated, uint(10))
		assert.Contains(t, f.campaignRepo.deactivated, uint(1))
	})

	t.Run("remaining schedule keeps campaign active", func(t *testing.T) {
		campaign := testCampaign()
		campaign.Schedules = []models.Schedule{
			{ID: 10, CampaignID: 1, Type: models.ScheduleTypeOnce, Day: "2026-06-15", Time: "09:30", IsActive: utils.ToPtr(true)},
			{ID: 11, CampaignID: 1, Type: models.ScheduleTypeWeekly, Day: "Monday", Time: "09:30", IsActive: utils.ToPtr(true)},
		}
		f := newFlowFixture(campaign, nil)

		scheduleID := uint(10)
		_, err := f.flow.ExecuteCampaign(context.Background(), 1, &scheduleID, models.ExecutionTypeScheduled)
		require.NoError(t, err)

		assert.Contains(t, f.scheduleRepo.deactivated, uint(10))
		assert.Empty(t, f.campaignRepo.deactivated)
	})

	t.Run("recurring schedule is never retired", func(t *testing.T) {
		campaign := testCampaign()
		campaign.Schedules = []models.Schedule{
			{ID: 11, CampaignID: 1, Type: models.ScheduleTypeWeekly, Day: "Monday", Time: "09:30", IsActive: utils.ToPtr(true)},
		}
		f := newFlowFixture(campaign, nil)

		scheduleID := uint(11)
		_, err := f.flow.ExecuteCampaign(context.Background(), 1, &scheduleID, models.ExecutionTypeScheduled)
		require.NoError(t, err)

		assert.Empty(t, f.scheduleRepo.deactivated)
		assert.Empty(t, f.campaignRepo.deactivated)
	})
}

func TestExecuteCampaignPublishesProgress(t *testing.T) {
	rows := []models.BoardRow{
		eligibleRow("1", "Alice", "5551234567"),
		eligibleRow("2", "Bob", "5559876543"),
	}
	f := newFlowFixture(testCampaign(), rows)

	_, err := f.flow.ExecuteCampaign(context.Background(), 1, nil, models.ExecutionTypeManual)
	require.NoError(t, err)

	require.NotEmpty(t, f.tracker.published)
	last := f.tracker.published[len(f.tracker.published)-1]
	assert.Equal(t, "completed", last.Status)
	assert.Equal(t, 2, last.Total)
	assert.Equal(t, 2, last.Sent)
	assert.Equal(t, 0, last.Failed)
}
