// Package businessflow contains the core business logic and use cases for campaign execution workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign-related errors
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCampaignInactive = errors.New("campaign is inactive")

	// Configuration-related errors
	ErrConfigurationNotFound      = errors.New("configuration not found")
	ErrBoardCredentialsMissing    = errors.New("board credentials are not configured")
	ErrDispatchCredentialsMissing = errors.New("provider API key or sender phone not configured")

	// Execution-related errors
	ErrExecutionNotFound = errors.New("execution not found")
	ErrBoardFetchFailed  = errors.New("board fetch failed")

	// Message-related errors
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")
	ErrTestSendFailed     = errors.New("test message send failed")
)

// BusinessError represents a business logic error with context
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsConfigurationNotFound(err error) bool {
	return errors.Is(err, ErrConfigurationNotFound)
}

func IsCredentialsMissing(err error) bool {
	return errors.Is(err, ErrBoardCredentialsMissing) || errors.Is(err, ErrDispatchCredentialsMissing)
}

func IsInvalidPhoneNumber(err error) bool {
	return errors.Is(err, ErrInvalidPhoneNumber)
}

func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
