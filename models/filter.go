package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// FilterOperator compares a row's column text against a condition value
type FilterOperator string

const (
	FilterOperatorEquals      FilterOperator = "equals"
	FilterOperatorNotEquals   FilterOperator = "not_equals"
	FilterOperatorContains    FilterOperator = "contains"
	FilterOperatorNotContains FilterOperator = "not_contains"
	FilterOperatorStartsWith  FilterOperator = "starts_with"
	FilterOperatorEndsWith    FilterOperator = "ends_with"
	FilterOperatorIsEmpty     FilterOperator = "is_empty"
	FilterOperatorIsNotEmpty  FilterOperator = "is_not_empty"
)

// FilterCondition is one predicate over a board row's column text.
type FilterCondition struct {
	ColumnID string         `json:"column_id"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// Matches evaluates the condition against a row. An absent column evaluates
// as empty text, and an unknown operator is deliberately permissive: it
// matches everything instead of failing the whole campaign.
func (c FilterCondition) Matches(row BoardRow) bool {
	text := row.ColumnText(c.ColumnID)

	switch c.Operator {
	case FilterOperatorEquals:
		return text == c.Value
	case FilterOperatorNotEquals:
		return text != c.Value
	case FilterOperatorContains:
		return strings.Contains(strings.ToLower(text), strings.ToLower(c.Value))
	case FilterOperatorNotContains:
		return !strings.Contains(strings.ToLower(text), strings.ToLower(c.Value))
	case FilterOperatorStartsWith:
		return strings.HasPrefix(strings.ToLower(text), strings.ToLower(c.Value))
	case FilterOperatorEndsWith:
		return strings.HasSuffix(strings.ToLower(text), strings.ToLower(c.Value))
	case FilterOperatorIsEmpty:
		return text == ""
	case FilterOperatorIsNotEmpty:
		return text != ""
	default:
		return true
	}
}

// String renders the condition in the form used by execution notes.
func (c FilterCondition) String() string {
	return fmt.Sprintf("%s %s %q", c.ColumnID, c.Operator, c.Value)
}

// FilterConditions is an ordered condition list stored as a JSONB column.
type FilterConditions []FilterCondition

// Matches applies AND semantics over the list; an empty list matches all rows.
func (fc FilterConditions) Matches(row BoardRow) bool {
	for _, c := range fc {
		if !c.Matches(row) {
			return false
		}
	}
	return true
}

// Apply keeps only the rows matching every condition, preserving input order.
func (fc FilterConditions) Apply(rows []BoardRow) []BoardRow {
	if len(fc) == 0 {
		return rows
	}
	out := make([]BoardRow, 0, len(rows))
	for _, row := range rows {
		if fc.Matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// Describe summarizes the conditions for UI display and execution notes.
func (fc FilterConditions) Describe() string {
	if len(fc) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fc))
	for _, c := range fc {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("%d filters: %s", len(fc), strings.Join(parts, " AND "))
}

// Value implements the driver.Valuer interface for FilterConditions
func (fc FilterConditions) Value() (driver.Value, error) {
	if fc == nil {
		return json.Marshal(FilterConditions{})
	}
	return json.Marshal(fc)
}

// Scan implements the sql.Scanner interface for FilterConditions
func (fc *FilterConditions) Scan(value any) error {
	if value == nil {
		*fc = FilterConditions{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FilterConditions", value)
	}

	return json.Unmarshal(bytes, fc)
}
