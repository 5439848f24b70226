package dbmanager

import (
	"fmt"
	"strings"
	"time"
)

// ColumnInfo is one column of a table: name plus the rendered MySQL type
// string (e.g. "varchar(100)", "decimal(10,2)").
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableSchema is an immutable snapshot of one table at fetch time. Column
// order follows the table's ordinal positions.
type TableSchema struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// ColumnNames returns the column names in table order.
func (t TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

// DatabaseSchema is a complete, consistent enumeration of all tables at one
// point in time. Tables that failed introspection individually are skipped,
// never merged from a different capture.
type DatabaseSchema struct {
	Tables     map[string]TableSchema `json:"tables"`
	TableNames []string               `json:"table_names"` // enumeration order
	CapturedAt time.Time              `json:"captured_at"`
}

// TableSample maps column name to up to MaxSampleValues distinct stringified
// non-null values seen in the most recently sampled rows. Best effort;
// absence never blocks query synthesis.
type TableSample struct {
	Table   string              `json:"table"`
	Columns map[string][]string `json:"columns"`
}

// CacheStats describes the current state of the schema cache.
type CacheStats struct {
	TotalEntries     int  `json:"total_entries"`
	TablesCached     int  `json:"tables_cached"`
	HasDBInfo        bool `json:"has_db_info"`
	CacheSizeLimit   int  `json:"cache_size_limit"`
	ExpiryHours      int  `json:"expiry_hours"`
	DBInfoAgeMinutes *int `json:"db_info_age_minutes,omitempty"`
}

// Diagnosis classifies a failed SQL execution and suggests remedies.
type Diagnosis struct {
	ErrorType        string   `json:"error_type"`
	Description      string   `json:"description"`
	Suggestions      []string `json:"suggestions"`
	AutoFixAvailable bool     `json:"auto_fix_available"`
}

// Diagnosis categories
const (
	ErrorTypeUnknown           = "unknown"
	ErrorTypeMarkdownArtifacts = "markdown_artifacts"
	ErrorTypeUnknownColumn     = "unknown_column"
	ErrorTypeSyntaxError       = "syntax_error"
	ErrorTypeTableNotFound     = "table_not_found"
)

// TableNotFoundError reports a table absent from the live enumeration. The
// message always carries the current list of valid tables.
type TableNotFoundError struct {
	Table           string
	AvailableTables []string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("tabla '%s' no existe. Tablas disponibles: [%s]", e.Table, strings.Join(e.AvailableTables, ", "))
}
