package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus represents the lifecycle state of one campaign run
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// String returns the string representation of the status
func (s ExecutionStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusRunning,
		ExecutionStatusCompleted, ExecutionStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ExecutionStatus
func (s *ExecutionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ExecutionStatus(v)
	case []byte:
		*s = ExecutionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ExecutionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ExecutionStatus
func (s ExecutionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ExecutionStatus: %s", s)
	}
	return string(s), nil
}

// ExecutionType distinguishes manual run-now invocations from scheduled fires
type ExecutionType string

const (
	ExecutionTypeManual    ExecutionType = "manual"
	ExecutionTypeScheduled ExecutionType = "scheduled"
)

// Execution is one run of a campaign. It is created before any row is
// processed and finalized with counts afterwards; rows skipped by the basic
// eligibility recheck or an unusable phone never enter the counts.
type Execution struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_executions_uuid" json:"uuid"`

	CampaignID uint  `gorm:"not null;index:idx_executions_campaign_id" json:"campaign_id"`
	ScheduleID *uint `gorm:"index:idx_executions_schedule_id" json:"schedule_id,omitempty"`

	Type   ExecutionType   `gorm:"type:execution_type;not null" json:"type"`
	Status ExecutionStatus `gorm:"type:execution_status;not null;default:'pending'" json:"status"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	TotalRecipients int `gorm:"default:0" json:"total_recipients"`
	SuccessfulSends int `gorm:"default:0" json:"successful_sends"`
	FailedSends     int `gorm:"default:0" json:"failed_sends"`

	// Note summarizes applied filters and up to a handful of failure reasons.
	Note *string `json:"note,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Execution) TableName() string { return "campaign_executions" }

// ExecutionFilter provides filter fields for repository queries
type ExecutionFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CampaignID    *uint
	Status        *ExecutionStatus
	Type          *ExecutionType
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
