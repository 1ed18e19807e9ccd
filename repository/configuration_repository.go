package repository

import (
	"context"

	"github.com/riverbyte/boardcast/models"
	"github.com/riverbyte/boardcast/utils"
	"gorm.io/gorm"
)

// ConfigurationRepositoryImpl implements ConfigurationRepository
type ConfigurationRepositoryImpl struct {
	*BaseRepository[models.Configuration, models.ConfigurationFilter]
}

func NewConfigurationRepository(db *gorm.DB) ConfigurationRepository {
	return &ConfigurationRepositoryImpl{BaseRepository: NewBaseRepository[models.Configuration, models.ConfigurationFilter](db)}
}

// ByUUID retrieves a configuration by UUID
func (r *ConfigurationRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Configuration, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.ConfigurationFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ConfigurationRepositoryImpl) applyFilter(db *gorm.DB, f models.ConfigurationFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Name != nil {
		db = db.Where("name = ?", *f.Name)
	}
	return db
}

func (r *ConfigurationRepositoryImpl) ByFilter(ctx context.Context, filter models.ConfigurationFilter, orderBy string, limit, offset int) ([]*models.Configuration, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Configuration{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Configuration
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ConfigurationRepositoryImpl) Count(ctx context.Context, filter models.ConfigurationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Configuration{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConfigurationRepositoryImpl) Exists(ctx context.Context, filter models.ConfigurationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
