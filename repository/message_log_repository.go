package repository

import (
	"context"

	"github.com/riverbyte/boardcast/models"
	"gorm.io/gorm"
)

// MessageLogRepositoryImpl implements MessageLogRepository
type MessageLogRepositoryImpl struct {
	*BaseRepository[models.MessageLog, models.MessageLogFilter]
}

func NewMessageLogRepository(db *gorm.DB) MessageLogRepository {
	return &MessageLogRepositoryImpl{BaseRepository: NewBaseRepository[models.MessageLog, models.MessageLogFilter](db)}
}

// ListByExecution returns all message logs of an execution in send order
func (r *MessageLogRepositoryImpl) ListByExecution(ctx context.Context, executionID uint) ([]*models.MessageLog, error) {
	return r.ByFilter(ctx, models.MessageLogFilter{ExecutionID: &executionID}, "id ASC", 0, 0)
}

func (r *MessageLogRepositoryImpl) applyFilter(db *gorm.DB, f models.MessageLogFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ExecutionID != nil {
		db = db.Where("execution_id = ?", *f.ExecutionID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Phone != nil {
		db = db.Where("recipient_phone = ?", *f.Phone)
	}
	return db
}

func (r *MessageLogRepositoryImpl) ByFilter(ctx context.Context, filter models.MessageLogFilter, orderBy string, limit, offset int) ([]*models.MessageLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MessageLog{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.MessageLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MessageLogRepositoryImpl) Count(ctx context.Context, filter models.MessageLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MessageLog{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageLogRepositoryImpl) Exists(ctx context.Context, filter models.MessageLogFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
