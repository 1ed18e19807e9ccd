package dto

import (
	"time"
)

// ExecuteCampaignRequest represents the request to run a campaign now
type ExecuteCampaignRequest struct {
	CampaignID uint `json:"-"`
}

// ExecuteCampaignResponse represents the final accounting of a campaign run
type ExecuteCampaignResponse struct {
	ExecutionUUID   string     `json:"execution_uuid"`
	CampaignID      uint       `json:"campaign_id"`
	Status          string     `json:"status"`
	TotalRecipients int        `json:"total_recipients"`
	SuccessfulSends int        `json:"successful_sends"`
	FailedSends     int        `json:"failed_sends"`
	Note            *string    `json:"note,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// PreviewCampaignRequest represents the request to dry-run a campaign
type PreviewCampaignRequest struct {
	CampaignID uint `json:"-"`
}

// PreviewRecipient is one row that would receive a message
type PreviewRecipient struct {
	ItemName      string `json:"item_name"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
}

// PreviewCampaignResponse represents the dry-run result: who would be
// messaged and how the candidate set was narrowed down
type PreviewCampaignResponse struct {
	CampaignID  uint               `json:"campaign_id"`
	Recipients  []PreviewRecipient `json:"recipients"`
	FiltersInfo *string            `json:"filters_info,omitempty"`
	Logs        []string           `json:"logs"`
}

// TestMessageRequest represents the request to send a single test message
type TestMessageRequest struct {
	PhoneNumber     string `json:"phone_number" validate:"required"`
	MessageTemplate string `json:"message_template" validate:"required"`
	ConfigurationID uint   `json:"configuration_id" validate:"required"`
}

// TestMessageResponse represents the outcome of a test message send
type TestMessageResponse struct {
	Phone   string `json:"phone"`
	Content string `json:"content"`
}

// TestCredentialsRequest represents the request to verify provider credentials
type TestCredentialsRequest struct {
	APIKey      string `json:"api_key" validate:"required"`
	SenderPhone string `json:"sender_phone" validate:"required"`
}

// TestCredentialsResponse represents the credential check result. Warning is
// set when the key works but the sender phone could not be confirmed.
type TestCredentialsResponse struct {
	Message          string   `json:"message"`
	Warning          bool     `json:"warning,omitempty"`
	AvailableNumbers []string `json:"available_numbers"`
}

// GetExecutionRequest represents the request to fetch one execution
type GetExecutionRequest struct {
	ExecutionUUID string `json:"-"`
}

// ExecutionProgressResponse represents a live progress snapshot of a running execution
type ExecutionProgressResponse struct {
	ExecutionID uint   `json:"execution_id"`
	CampaignID  uint   `json:"campaign_id"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
	Sent        int    `json:"sent"`
	Failed      int    `json:"failed"`
}

// ListExecutionsRequest represents the request to list a campaign's executions
type ListExecutionsRequest struct {
	CampaignID uint `json:"-"`
	Limit      int  `json:"-"`
	Offset     int  `json:"-"`
}
