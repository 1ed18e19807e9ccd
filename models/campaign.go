package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Campaign is a saved targeting and messaging rule: which board rows are
// eligible, what to send them, and how to reach them. The execution core
// reads campaigns but never edits them, except for deactivation when every
// schedule is exhausted.
type Campaign struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`

	ConfigurationID uint    `gorm:"not null;index:idx_campaigns_configuration_id" json:"configuration_id"`
	Name            string  `gorm:"not null" json:"name"`
	Description     *string `json:"description,omitempty"`

	// Basic eligibility: the status column must display exactly StatusValue
	// and the phone column must be non-empty.
	StatusColumn string `gorm:"not null" json:"status_column"`
	StatusValue  string `gorm:"not null" json:"status_value"`
	PhoneColumn  string `gorm:"not null" json:"phone_column"`

	MessageTemplate string `gorm:"not null" json:"message_template"`

	// SelectedItems, when non-empty, restricts the run to these board row ids
	// before any other filtering.
	SelectedItems pq.StringArray `gorm:"type:text[]" json:"selected_items,omitempty"`

	// Filters are the campaign-authored conditions applied on top of the
	// basic eligibility check.
	Filters FilterConditions `gorm:"type:jsonb" json:"filters,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_campaigns_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Configuration *Configuration `gorm:"foreignKey:ConfigurationID" json:"configuration,omitempty"`
	Schedules     []Schedule     `gorm:"foreignKey:CampaignID" json:"schedules,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

// RowEligible applies the campaign's basic condition to one row: the status
// column text equals the target value and the phone column text is non-empty.
// This runs per row at send time even when advanced filters already passed,
// because it must see the current value of exactly these two columns.
func (c *Campaign) RowEligible(row BoardRow) bool {
	if row.ColumnText(c.StatusColumn) != c.StatusValue {
		return false
	}
	return row.ColumnText(c.PhoneColumn) != ""
}

// ApplySelectedItems restricts rows to the campaign's explicit allow-list.
// An empty allow-list keeps every row.
func (c *Campaign) ApplySelectedItems(rows []BoardRow) []BoardRow {
	if len(c.SelectedItems) == 0 {
		return rows
	}
	allowed := make(map[string]struct{}, len(c.SelectedItems))
	for _, id := range c.SelectedItems {
		allowed[id] = struct{}{}
	}
	out := make([]BoardRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := allowed[row.ID]; ok {
			out = append(out, row)
		}
	}
	return out
}

// CampaignFilter provides filter fields for repository queries
type CampaignFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	ConfigurationID *uint
	IsActive        *bool
}
