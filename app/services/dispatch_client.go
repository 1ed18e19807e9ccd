package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/riverbyte/boardcast/config"
)

// DispatchErrorKind classifies a failed send attempt
type DispatchErrorKind string

const (
	DispatchErrBadRequest   DispatchErrorKind = "bad_request"
	DispatchErrUnauthorized DispatchErrorKind = "unauthorized"
	DispatchErrForbidden    DispatchErrorKind = "forbidden"
	DispatchErrNotFound     DispatchErrorKind = "not_found"
	DispatchErrValidation   DispatchErrorKind = "validation"
	DispatchErrRateLimited  DispatchErrorKind = "rate_limited"
	DispatchErrServer       DispatchErrorKind = "server_error"
	DispatchErrNetwork      DispatchErrorKind = "network_error"
	DispatchErrUnknown      DispatchErrorKind = "unknown"
)

// SendResult reports the outcome of a single send attempt.
// A failed attempt is data, not an error: the executor keeps going.
type SendResult struct {
	Success      bool
	MessageID    string
	ErrorKind    DispatchErrorKind
	ErrorMessage string
}

// SenderNumber is a phone number available on the provider account
type SenderNumber struct {
	PhoneNumber     string `json:"phoneNumber"`
	FormattedNumber string `json:"formattedNumber"`
}

// DispatchClient sends SMS messages through the provider
type DispatchClient interface {
	SendMessage(ctx context.Context, apiKey, from, to, content string) SendResult
	ListSenderNumbers(ctx context.Context, apiKey string) ([]SenderNumber, error)
}

// DispatchClientImpl implements DispatchClient against an OpenPhone-style API
type DispatchClientImpl struct {
	config *config.DispatchConfig
	client *http.Client
}

// NewDispatchClient creates a new dispatch client instance
func NewDispatchClient(cfg *config.DispatchConfig) DispatchClient {
	return &DispatchClientImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type dispatchSendRequest struct {
	Content string   `json:"content"`
	From    string   `json:"from"`
	To      []string `json:"to"`
}

type dispatchSendResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Message string `json:"message"`
}

type dispatchNumbersResponse struct {
	Data []SenderNumber `json:"data"`
}

// SendMessage sends one SMS. It never returns a Go error: every failure is
// classified into the result so partial-failure accounting stays simple.
func (d *DispatchClientImpl) SendMessage(ctx context.Context, apiKey, from, to, content string) SendResult {
	requestBody, err := json.Marshal(dispatchSendRequest{
		Content: content,
		From:    from,
		To:      []string{to},
	})
	if err != nil {
		return SendResult{ErrorKind: DispatchErrUnknown, ErrorMessage: fmt.Sprintf("Request Setup Error: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.config.BaseURL+"/v1/messages", bytes.NewBuffer(requestBody))
	if err != nil {
		return SendResult{ErrorKind: DispatchErrUnknown, ErrorMessage: fmt.Sprintf("Request Setup Error: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return SendResult{ErrorKind: DispatchErrNetwork, ErrorMessage: "Network Error: No response from provider API"}
	}
	defer resp.Body.Close()

	var decoded dispatchSendResponse
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return SendResult{Success: true, MessageID: decoded.Data.ID}
	}

	return classifySendFailure(resp.StatusCode, decoded.Message)
}

func classifySendFailure(status int, providerMessage string) SendResult {
	switch status {
	case http.StatusBadRequest:
		if providerMessage == "" {
			providerMessage = "Invalid request data"
		}
		return SendResult{ErrorKind: DispatchErrBadRequest, ErrorMessage: "Bad Request: " + providerMessage}
	case http.StatusUnauthorized:
		return SendResult{ErrorKind: DispatchErrUnauthorized, ErrorMessage: "Unauthorized: Invalid provider API key"}
	case http.StatusForbidden:
		return SendResult{ErrorKind: DispatchErrForbidden, ErrorMessage: "Forbidden: No permission to send from this number"}
	case http.StatusNotFound:
		return SendResult{ErrorKind: DispatchErrNotFound, ErrorMessage: "Not Found: Invalid endpoint or phone number"}
	case http.StatusUnprocessableEntity:
		if providerMessage == "" {
			providerMessage = "Invalid data provided"
		}
		return SendResult{ErrorKind: DispatchErrValidation, ErrorMessage: "Validation Error: " + providerMessage}
	case http.StatusTooManyRequests:
		return SendResult{ErrorKind: DispatchErrRateLimited, ErrorMessage: "Rate Limited: Too many requests"}
	case http.StatusInternalServerError:
		return SendResult{ErrorKind: DispatchErrServer, ErrorMessage: "Provider Server Error: Please try again later"}
	default:
		if providerMessage == "" {
			providerMessage = http.StatusText(status)
		}
		return SendResult{ErrorKind: DispatchErrUnknown, ErrorMessage: fmt.Sprintf("HTTP %d: %s", status, providerMessage)}
	}
}

// ListSenderNumbers fetches the phone numbers available on the account
func (d *DispatchClientImpl) ListSenderNumbers(ctx context.Context, apiKey string) ([]SenderNumber, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", d.config.BaseURL+"/v1/phone-numbers", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach provider API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("invalid provider API key")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider API returned HTTP %d", resp.StatusCode)
	}

	var decoded dispatchNumbersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	return decoded.Data, nil
}

// MockDispatchClient implements DispatchClient for testing
type MockDispatchClient struct {
	Sent    []MockSentMessage
	Results map[string]SendResult // keyed by recipient; missing key means success
	Numbers []SenderNumber
	ListErr error
}

// MockSentMessage records a sent mock message
type MockSentMessage struct {
	From    string
	To      string
	Content string
}

// NewMockDispatchClient creates a new mock dispatch client
func NewMockDispatchClient() *MockDispatchClient {
	return &MockDispatchClient{
		Results: make(map[string]SendResult),
	}
}

func (m *MockDispatchClient) SendMessage(ctx context.Context, apiKey, from, to, content string) SendResult {
	m.Sent = append(m.Sent, MockSentMessage{From: from, To: to, Content: content})
	if r, ok := m.Results[to]; ok {
		return r
	}
	return SendResult{Success: true, MessageID: fmt.Sprintf("mock-%d", len(m.Sent))}
}

func (m *MockDispatchClient) ListSenderNumbers(ctx context.Context, apiKey string) ([]SenderNumber, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Numbers, nil
}
