package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// MessageLogStatus represents the final outcome of one send attempt
type MessageLogStatus string

const (
	MessageLogStatusSent   MessageLogStatus = "sent"
	MessageLogStatusFailed MessageLogStatus = "failed"
)

// String returns the string representation of the status
func (s MessageLogStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s MessageLogStatus) Valid() bool {
	switch s {
	case MessageLogStatusSent, MessageLogStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for MessageLogStatus
func (s *MessageLogStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = MessageLogStatus(v)
	case []byte:
		*s = MessageLogStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into MessageLogStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for MessageLogStatus
func (s MessageLogStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid MessageLogStatus: %s", s)
	}
	return string(s), nil
}

// MessageLog records one attempted send inside an execution. Rows are
// append-only: each attempt is final, there is no retry and no update.
type MessageLog struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ExecutionID uint `gorm:"not null;index:idx_message_logs_execution_id" json:"execution_id"`
	CampaignID  uint `gorm:"not null;index:idx_message_logs_campaign_id" json:"campaign_id"`

	RecipientPhone string `gorm:"not null" json:"recipient_phone"`
	RecipientName  string `json:"recipient_name"`
	Content        string `gorm:"not null" json:"content"`

	Status       MessageLogStatus `gorm:"type:message_log_status;not null" json:"status"`
	ErrorMessage *string          `json:"error_message,omitempty"`

	Provider          string  `gorm:"not null" json:"provider"`
	ProviderMessageID *string `json:"provider_message_id,omitempty"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (MessageLog) TableName() string { return "message_logs" }

// MessageLogFilter provides filter fields for repository queries
type MessageLogFilter struct {
	ID          *uint
	ExecutionID *uint
	CampaignID  *uint
	Status      *MessageLogStatus
	Phone       *string
}
