// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/riverbyte/boardcast/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ConfigurationRepository defines operations for board/provider configurations
type ConfigurationRepository interface {
	Repository[models.Configuration, models.ConfigurationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Configuration, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ByIDWithRelations(ctx context.Context, id uint) (*models.Campaign, error)
	ListActiveWithSchedules(ctx context.Context) ([]*models.Campaign, error)
	Deactivate(ctx context.Context, id uint) error
}

// ScheduleRepository defines operations for campaign schedules
type ScheduleRepository interface {
	Repository[models.Schedule, models.ScheduleFilter]
	MarkExecuted(ctx context.Context, id uint, executedAt time.Time) error
	Deactivate(ctx context.Context, id uint) error
	CountActiveByCampaign(ctx context.Context, campaignID uint) (int64, error)
}

// ExecutionRepository defines operations for campaign executions
type ExecutionRepository interface {
	Repository[models.Execution, models.ExecutionFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Execution, error)
	Update(ctx context.Context, execution *models.Execution) error
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Execution, error)
}

// MessageLogRepository defines operations for per-message send logs
type MessageLogRepository interface {
	Repository[models.MessageLog, models.MessageLogFilter]
	ListByExecution(ctx context.Context, executionID uint) ([]*models.MessageLog, error)
}
