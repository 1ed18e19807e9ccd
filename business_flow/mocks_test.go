package businessflow

import (
	"context"
	"time"

	"github.com/riverbyte/boardcast/app/services"
	"github.com/riverbyte/boardcast/models"
)

// stubRepo satisfies the generic repository methods the flows never touch.
type stubRepo[T any, F any] struct{}

func (stubRepo[T, F]) ByID(ctx context.Context, id uint) (*T, error) { return nil, nil }
func (stubRepo[T, F]) ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error) {
	return nil, nil
}
func (stubRepo[T, F]) Save(ctx context.Context, entity *T) error        { return nil }
func (stubRepo[T, F]) SaveBatch(ctx context.Context, entities []*T) error { return nil }
func (stubRepo[T, F]) Count(ctx context.Context, filter F) (int64, error) { return 0, nil }
func (stubRepo[T, F]) Exists(ctx context.Context, filter F) (bool, error) { return false, nil }

type fakeCampaignRepo struct {
	stubRepo[models.Campaign, models.CampaignFilter]
	campaigns   map[uint]*models.Campaign
	deactivated []uint
}

func newFakeCampaignRepo(campaigns ...*models.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{campaigns: make(map[uint]*models.Campaign)}
	for _, c := range campaigns {
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *fakeCampaignRepo) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	return nil, nil
}

func (r *fakeCampaignRepo) ByIDWithRelations(ctx context.Context, id uint) (*models.Campaign, error) {
	return r.campaigns[id], nil
}

func (r *fakeCampaignRepo) ListActiveWithSchedules(ctx context.Context) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if c.IsActive != nil && *c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) Deactivate(ctx context.Context, id uint) error {
	r.deactivated = append(r.deactivated, id)
	if c, ok := r.campaigns[id]; ok {
		inactive := false
		c.IsActive = &inactive
	}
	return nil
}

type fakeConfigurationRepo struct {
	stubRepo[models.Configuration, models.ConfigurationFilter]
	configs map[uint]*models.Configuration
}

func newFakeConfigurationRepo(configs ...*models.Configuration) *fakeConfigurationRepo {
	r := &fakeConfigurationRepo{configs: make(map[uint]*models.Configuration)}
	for _, c := range configs {
		r.configs[c.ID] = c
	}
	return r
}

func (r *fakeConfigurationRepo) ByID(ctx context.Context, id uint) (*models.Configuration, error) {
	return r.configs[id], nil
}

func (r *fakeConfigurationRepo) ByUUID(ctx context.Context, uuid string) (*models.Configuration, error) {
	return nil, nil
}

type fakeScheduleRepo struct {
	stubRepo[models.Schedule, models.ScheduleFilter]
	schedules    map[uint]*models.Schedule
	deactivated  []uint
	markExecuted []uint
}

func newFakeScheduleRepo(schedules ...*models.Schedule) *fakeScheduleRepo {
	r := &fakeScheduleRepo{schedules: make(map[uint]*models.Schedule)}
	for _, s := range schedules {
		r.schedules[s.ID] = s
	}
	return r
}

func (r *fakeScheduleRepo) ByID(ctx context.Context, id uint) (*models.Schedule, error) {
	return r.schedules[id], nil
}

func (r *fakeScheduleRepo) MarkExecuted(ctx context.Context, id uint, executedAt time.Time) error {
	r.markExecuted = append(r.markExecuted, id)
	if s, ok := r.schedules[id]; ok {
		at := executedAt
		s.LastExecutedAt = &at
		s.ExecutionCount++
	}
	return nil
}

func (r *fakeScheduleRepo) Deactivate(ctx context.Context, id uint) error {
	r.deactivated = append(r.deactivated, id)
	if s, ok := r.schedules[id]; ok {
		inactive := false
		s.IsActive = &inactive
	}
	return nil
}

func (r *fakeScheduleRepo) CountActiveByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	var n int64
	for _, s := range r.schedules {
		if s.CampaignID == campaignID && s.IsActive != nil && *s.IsActive {
			n++
		}
	}
	return n, nil
}

type fakeExecutionRepo struct {
	stubRepo[models.Execution, models.ExecutionFilter]
	executions []*models.Execution
	// updates holds a snapshot of every Update call, in order
	updates []models.Execution
	nextID  uint
}

func newFakeExecutionRepo() *fakeExecutionRepo {
	return &fakeExecutionRepo{nextID: 1}
}

func (r *fakeExecutionRepo) Save(ctx context.Context, execution *models.Execution) error {
	execution.ID = r.nextID
	r.nextID++
	r.executions = append(r.executions, execution)
	return nil
}

func (r *fakeExecutionRepo) Update(ctx context.Context, execution *models.Execution) error {
	r.updates = append(r.updates, *execution)
	return nil
}

func (r *fakeExecutionRepo) ByUUID(ctx context.Context, uuid string) (*models.Execution, error) {
	for _, e := range r.executions {
		if e.UUID.String() == uuid {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeExecutionRepo) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Execution, error) {
	var out []*models.Execution
	for _, e := range r.executions {
		if e.CampaignID == campaignID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMessageLogRepo struct {
	stubRepo[models.MessageLog, models.MessageLogFilter]
	logs []*models.MessageLog
}

func (r *fakeMessageLogRepo) Save(ctx context.Context, entry *models.MessageLog) error {
	r.logs = append(r.logs, entry)
	return nil
}

func (r *fakeMessageLogRepo) ListByExecution(ctx context.Context, executionID uint) ([]*models.MessageLog, error) {
	var out []*models.MessageLog
	for _, l := range r.logs {
		if l.ExecutionID == executionID {
			out = append(out, l)
		}
	}
	return out, nil
}

// recordingTracker captures every progress snapshot published by a flow.
type recordingTracker struct {
	published []services.ExecutionProgress
}

func (t *recordingTracker) Publish(ctx context.Context, p services.ExecutionProgress) {
	t.published = append(t.published, p)
}

func (t *recordingTracker) Get(ctx context.Context, executionID uint) (*services.ExecutionProgress, error) {
	for i := len(t.published) - 1; i >= 0; i-- {
		if t.published[i].ExecutionID == executionID {
			return &t.published[i], nil
		}
	}
	return nil, nil
}
