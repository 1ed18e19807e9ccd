package repository

import (
	"context"
	"time"

	"github.com/riverbyte/boardcast/models"
	"gorm.io/gorm"
)

// ScheduleRepositoryImpl implements ScheduleRepository
type ScheduleRepositoryImpl struct {
	*BaseRepository[models.Schedule, models.ScheduleFilter]
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &ScheduleRepositoryImpl{BaseRepository: NewBaseRepository[models.Schedule, models.ScheduleFilter](db)}
}

// MarkExecuted records an execution on the schedule before the run starts,
// so a crash mid-run cannot cause a duplicate fire on the next tick.
func (r *ScheduleRepositoryImpl) MarkExecuted(ctx context.Context, id uint, executedAt time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.Schedule{}).Where("id = ?", id).Updates(map[string]any{
		"last_executed_at": executedAt,
		"execution_count":  gorm.Expr("execution_count + 1"),
	}).Error
}

// Deactivate marks a schedule inactive
func (r *ScheduleRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Schedule{}).Where("id = ?", id).Update("is_active", false).Error
}

// CountActiveByCampaign returns the number of active schedules left on a campaign
func (r *ScheduleRepositoryImpl) CountActiveByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	return r.Count(ctx, models.ScheduleFilter{
		CampaignID: &campaignID,
		IsActive:   boolPtr(true),
	})
}

func boolPtr(v bool) *bool { return &v }

func (r *ScheduleRepositoryImpl) applyFilter(db *gorm.DB, f models.ScheduleFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *ScheduleRepositoryImpl) ByFilter(ctx context.Context, filter models.ScheduleFilter, orderBy string, limit, offset int) ([]*models.Schedule, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Schedule{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Schedule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepositoryImpl) Count(ctx context.Context, filter models.ScheduleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Schedule{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScheduleRepositoryImpl) Exists(ctx context.Context, filter models.ScheduleFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
