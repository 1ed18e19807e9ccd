package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements CampaignRepository
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db)}
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Campaign, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.CampaignFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByIDWithRelations retrieves a campaign with its configuration and schedules preloaded
func (r *CampaignRepositoryImpl) ByIDWithRelations(ctx context.Context, id uint) (*models.Campaign, error) {
	db := r.getDB(ctx)
	var campaign models.Campaign
	err := db.Preload("Configuration").Preload("Schedules").Last(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find campaign by ID %d: %w", id, err)
	}
	return &campaign, nil
}

// ListActiveWithSchedules returns all active campaigns with their active schedules and configuration
func (r *CampaignRepositoryImpl) ListActiveWithSchedules(ctx context.Context) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	var campaigns []*models.Campaign
	err := db.Model(&models.Campaign{}).
		Where("is_active = ?", true).
		Preload("Configuration").
		Preload("Schedules", "is_active = ?", true).
		Order("id ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Deactivate marks a campaign inactive
func (r *CampaignRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Campaign{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, f models.CampaignFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.ConfigurationID != nil {
		db = db.Where("configuration_id = ?", *f.ConfigurationID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Campaign
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
