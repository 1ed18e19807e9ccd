package models

// BoardRow is one item fetched from the board provider. It is a value object
// refreshed on every fetch and never persisted: the board stays the source of
// truth between runs.
type BoardRow struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ColumnValues []ColumnValue `json:"column_values"`
}

// ColumnValue is one (column id, displayed text, raw value) triple of a row.
type ColumnValue struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

// ColumnText returns the displayed text for a column id. An absent column
// reads as empty text rather than an error, matching the filter semantics.
func (r BoardRow) ColumnText(id string) string {
	for _, cv := range r.ColumnValues {
		if cv.ID == id {
			return cv.Text
		}
	}
	return ""
}

// HasColumn reports whether the row carries the given column id at all.
func (r BoardRow) HasColumn(id string) bool {
	for _, cv := range r.ColumnValues {
		if cv.ID == id {
			return true
		}
	}
	return false
}
