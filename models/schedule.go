package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// ScheduleType represents how a schedule recurs
type ScheduleType string

const (
	ScheduleTypeOnce    ScheduleType = "once"
	ScheduleTypeWeekly  ScheduleType = "weekly"
	ScheduleTypeMonthly ScheduleType = "monthly"
)

// String returns the string representation of the type
func (t ScheduleType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleTypeOnce, ScheduleTypeWeekly, ScheduleTypeMonthly:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ScheduleType
func (t *ScheduleType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = ScheduleType(v)
	case []byte:
		*t = ScheduleType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ScheduleType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ScheduleType
func (t ScheduleType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ScheduleType: %s", t)
	}
	return string(t), nil
}

// Schedule describes when one campaign fires. Day's meaning depends on Type:
// an ISO date (2006-01-02) for "once", a weekday name for "weekly", a
// day-of-month integer for "monthly". Time is "HH:MM" interpreted in the
// single scheduler timezone.
type Schedule struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CampaignID uint `gorm:"not null;index:idx_schedules_campaign_id" json:"campaign_id"`

	Type ScheduleType `gorm:"type:schedule_type;not null" json:"type"`
	Day  string       `gorm:"not null" json:"day"`
	Time string       `gorm:"not null" json:"time"`

	IsActive       *bool      `gorm:"default:true;index:idx_schedules_is_active" json:"is_active"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
	ExecutionCount int        `gorm:"default:0" json:"execution_count"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Schedule) TableName() string { return "campaign_schedules" }

// OnceTarget parses the schedule's date and time in the given location.
// Only meaningful for "once" schedules.
func (s *Schedule) OnceTarget(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", s.Day+" "+s.Time, loc)
}

// DueAt reports whether the schedule matches the given wall-clock moment,
// which must already be expressed in the scheduler timezone. Matching is
// minute-resolution: the schedule's HH:MM must equal the current minute, and
// the day component must match per type. There is no catch-up for minutes
// missed while the process was down.
func (s *Schedule) DueAt(now time.Time) bool {
	if s.Time != now.Format("15:04") {
		return false
	}

	switch s.Type {
	case ScheduleTypeOnce:
		return s.Day == now.Format("2006-01-02")
	case ScheduleTypeWeekly:
		return s.Day == now.Weekday().String()
	case ScheduleTypeMonthly:
		day, err := strconv.Atoi(s.Day)
		return err == nil && day == now.Day()
	default:
		return false
	}
}

// ScheduleFilter provides filter fields for repository queries
type ScheduleFilter struct {
	ID         *uint
	CampaignID *uint
	Type       *ScheduleType
	IsActive   *bool
}
