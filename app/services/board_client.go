// Package services provides external service integrations and technical concerns like board fetching and message dispatch
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/riverbyte/boardcast/config"
	"github.com/riverbyte/boardcast/models"
)

// BoardClient fetches recipient rows from a board group
type BoardClient interface {
	FetchGroupRows(ctx context.Context, apiKey, boardID, groupID string) (*BoardFetchResult, error)
}

// BoardFetchResult holds the rows collected across pages.
// Partial is set when a page after the first failed; Rows then holds
// everything collected before the failure.
type BoardFetchResult struct {
	Rows          []models.BoardRow
	Pages         int
	Truncated     bool
	Partial       bool
	PartialReason string
}

// BoardClientImpl implements BoardClient against a Monday-style GraphQL API
type BoardClientImpl struct {
	config *config.BoardConfig
	client *http.Client
}

// NewBoardClient creates a new board client instance
func NewBoardClient(cfg *config.BoardConfig) BoardClient {
	return &BoardClientImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type boardQueryRequest struct {
	Query string `json:"query"`
}

type boardItemsPage struct {
	Cursor string            `json:"cursor"`
	Items  []models.BoardRow `json:"items"`
}

type boardQueryResponse struct {
	Data struct {
		Boards []struct {
			Groups []struct {
				ItemsPage *boardItemsPage `json:"items_page"`
			} `json:"groups"`
		} `json:"boards"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchGroupRows pulls all rows of a board group, paging until the cursor
// runs out or the page cap is reached. A failure on the first page is fatal;
// a failure on a later page returns the rows collected so far.
func (b *BoardClientImpl) FetchGroupRows(ctx context.Context, apiKey, boardID, groupID string) (*BoardFetchResult, error) {
	result := &BoardFetchResult{}
	cursor := ""
	hasNext := true

	for hasNext && result.Pages < b.config.MaxPages {
		result.Pages++

		page, err := b.fetchPage(ctx, apiKey, boardID, groupID, cursor)
		if err != nil {
			if result.Pages == 1 {
				return nil, err
			}
			result.Partial = true
			result.PartialReason = err.Error()
			return result, nil
		}
		if page == nil {
			// group has no items page, nothing more to fetch
			break
		}

		result.Rows = append(result.Rows, page.Items...)

		if page.Cursor != "" && len(page.Items) == b.config.PageSize {
			cursor = page.Cursor
		} else {
			hasNext = false
		}
	}

	if hasNext && result.Pages >= b.config.MaxPages {
		result.Truncated = true
	}

	return result, nil
}

func (b *BoardClientImpl) fetchPage(ctx context.Context, apiKey, boardID, groupID, cursor string) (*boardItemsPage, error) {
	cursorArg := ""
	if cursor != "" {
		cursorArg = fmt.Sprintf(", cursor: %q", cursor)
	}
	query := fmt.Sprintf(`
		query {
			boards(ids: %s) {
				groups(ids: %q) {
					items_page(limit: %d%s) {
						cursor
						items {
							id
							name
							column_values {
								id
								text
								value
							}
						}
					}
				}
			}
		}`, boardID, groupID, b.config.PageSize, cursorArg)

	requestBody, err := json.Marshal(boardQueryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.config.BaseURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query board API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board API returned HTTP %d", resp.StatusCode)
	}

	var decoded boardQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode board API response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("board API errors: %s", strings.Join(messages, ", "))
	}

	if len(decoded.Data.Boards) == 0 {
		return nil, fmt.Errorf("board %s not found or no access", boardID)
	}
	groups := decoded.Data.Boards[0].Groups
	if len(groups) == 0 {
		return nil, fmt.Errorf("group %s not found in board %s", groupID, boardID)
	}

	return groups[0].ItemsPage, nil
}

// MockBoardClient implements BoardClient for testing
type MockBoardClient struct {
	Result *BoardFetchResult
	Err    error

	Calls []MockBoardCall
}

// MockBoardCall records the arguments of a FetchGroupRows call
type MockBoardCall struct {
	APIKey  string
	BoardID string
	GroupID string
}

// NewMockBoardClient creates a new mock board client
func NewMockBoardClient(result *BoardFetchResult, err error) *MockBoardClient {
	return &MockBoardClient{Result: result, Err: err}
}

func (m *MockBoardClient) FetchGroupRows(ctx context.Context, apiKey, boardID, groupID string) (*BoardFetchResult, error) {
	m.Calls = append(m.Calls, MockBoardCall{APIKey: apiKey, BoardID: boardID, GroupID: groupID})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
