package repository

import (
	"context"
	"fmt"

	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/utils"
	"gorm.io/gorm"
)

// ExecutionRepositoryImpl implements ExecutionRepository
type ExecutionRepositoryImpl struct {
	*BaseRepository[models.Execution, models.ExecutionFilter]
}

func NewExecutionRepository(db *gorm.DB) ExecutionRepository {
	return &ExecutionRepositoryImpl{BaseRepository: NewBaseRepository[models.Execution, models.ExecutionFilter](db)}
}

// ByUUID retrieves an execution by UUID
func (r *ExecutionRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Execution, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.ExecutionFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update persists the current state of an execution row
func (r *ExecutionRepositoryImpl) Update(ctx context.Context, execution *models.Execution) error {
	db := r.getDB(ctx)
	if err := db.Save(execution).Error; err != nil {
		return fmt.Errorf("failed to update execution %d: %w", execution.ID, err)
	}
	return nil
}

// ListByCampaign returns executions for a campaign, newest first
func (r *ExecutionRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Execution, error) {
	return r.ByFilter(ctx, models.ExecutionFilter{CampaignID: &campaignID}, "id DESC", limit, offset)
}

func (r *ExecutionRepositoryImpl) applyFilter(db *gorm.DB, f models.ExecutionFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ExecutionRepositoryImpl) ByFilter(ctx context.Context, filter models.ExecutionFilter, orderBy string, limit, offset int) ([]*models.Execution, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Execution{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Execution
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ExecutionRepositoryImpl) Count(ctx context.Context, filter models.ExecutionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Execution{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ExecutionRepositoryImpl) Exists(ctx context.Context, filter models.ExecutionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
