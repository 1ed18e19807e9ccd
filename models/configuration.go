package models

import (
	"time"

	"github.com/google/uuid"
)

// Configuration holds board coordinates and provider credentials for one
// workspace. The execution core treats it as read-only input: it is created
// and edited by the admin UI only.
type Configuration struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_configurations_uuid" json:"uuid"`

	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description,omitempty"`

	BoardID     string `gorm:"not null" json:"board_id"`
	GroupID     string `gorm:"not null" json:"group_id"`
	BoardAPIKey string `gorm:"not null" json:"-"`

	DispatchAPIKey string `json:"-"`
	SenderPhone    string `json:"sender_phone"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Configuration) TableName() string { return "configurations" }

// HasBoardCredentials reports whether the board provider can be queried.
func (c *Configuration) HasBoardCredentials() bool {
	return c.BoardAPIKey != "" && c.BoardID != ""
}

// HasDispatchCredentials reports whether messages can be sent.
func (c *Configuration) HasDispatchCredentials() bool {
	return c.DispatchAPIKey != "" && c.SenderPhone != ""
}

// ConfigurationFilter provides filter fields for repository queries
type ConfigurationFilter struct {
	ID   *uint
	UUID *uuid.UUID
	Name *string
}
