package dbmanager

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/internal/utils"
)

// QueryExecutor runs validated and optimized SQL against the database and
// normalizes the result into a JSON array of objects. It never returns an
// error: every failure becomes a structured JSON payload.
type QueryExecutor struct {
	db DBExecutor
}

// NewQueryExecutor creates an executor over the given database surface.
func NewQueryExecutor(db DBExecutor) *QueryExecutor {
	return &QueryExecutor{db: db}
}

// Execute applies the safety gate, optimizes the statement, executes it and
// serializes the rows. On a database error it diagnoses the failure and,
// when the markdown auto-fix applies on a first attempt, retries exactly
// once with the repaired statement.
func (e *QueryExecutor) Execute(ctx context.Context, query string, tableName string) string {
	// Safety gate first: a refusal payload, never an exception, and the
	// statement never reaches the database.
	if err := utils.ValidateSQLQuery(query); err != nil {
		log.Printf("QueryExecutor -> Execute -> Consulta rechazada: %v", err)
		return errorJSON(constants.QueryRefusalMessage)
	}

	optimized, warnings := ValidateAndEnhance(query)
	for _, warning := range warnings {
		log.Printf("QueryExecutor -> Execute -> Advertencia: %s", warning)
	}

	if err := ctx.Err(); err != nil {
		return errorJSON(err.Error())
	}

	rows, err := e.db.Rows(optimized)
	if err != nil {
		return e.handleExecutionError(ctx, err, query, optimized, tableName)
	}
	defer rows.Close()

	resultJSON, err := rowsToJSON(rows)
	if err != nil {
		return errorJSON(err.Error())
	}

	return resultJSON
}

// handleExecutionError builds a diagnosis for a failed execution and drives
// the bounded auto-fix retry.
func (e *QueryExecutor) handleExecutionError(ctx context.Context, execErr error, original, optimized, tableName string) string {
	diagnosis := DiagnoseQueryError(execErr.Error(), optimized)

	// Retry once, only on the first attempt and only for the repairable
	// markdown case.
	if diagnosis.AutoFixAvailable && optimized == original {
		if fixed := FixMarkdownArtifacts(original); fixed != original {
			log.Printf("QueryExecutor -> handleExecutionError -> Reintentando con consulta corregida")
			return e.Execute(ctx, fixed, tableName)
		}
	}

	payload := map[string]interface{}{
		"error":       execErr.Error(),
		"diagnosis":   diagnosis,
		"suggestions": diagnosis.Suggestions,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errorJSON(execErr.Error())
	}
	return string(data)
}

// rowsToJSON converts a cursor into a compact JSON array of objects,
// preserving row and column order. Empty result sets serialize as "[]",
// never null.
func rowsToJSON(rows *sql.Rows) (string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to read columns: %v", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return "", fmt.Errorf("failed to read column types: %v", err)
	}
	typeNames := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		typeNames[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	result := make([]orderedRow, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return "", fmt.Errorf("failed to scan row: %v", err)
		}

		converted := make([]interface{}, len(columns))
		for i, raw := range values {
			converted[i] = convertValue(raw, typeNames[i])
		}
		result = append(result, orderedRow{columns: columns, values: converted})
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate rows: %v", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %v", err)
	}
	return string(data), nil
}

// orderedRow marshals as a JSON object whose keys keep the result set's
// column order, which encoding/json maps would alphabetize away.
type orderedRow struct {
	columns []string
	values  []interface{}
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// convertValue maps driver values onto the JSON-representable scalars the
// pipeline permits: numbers, strings, booleans, ISO-8601 date/time strings
// and null. DECIMAL becomes float64, temporal values become ISO strings.
func convertValue(raw interface{}, dbType string) interface{} {
	if raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case time.Time:
		if dbType == "DATE" {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02T15:04:05")
	case []byte:
		return convertTextual(string(v), dbType)
	case string:
		return convertTextual(v, dbType)
	default:
		return v
	}
}

// convertTextual resolves string-shaped driver values. The MySQL text
// protocol delivers every non-NULL value as bytes, so integer, floating and
// fixed-point columns all arrive here and must be parsed back into numbers.
// Anything unparseable stays a string.
func convertTextual(value, dbType string) interface{} {
	switch dbType {
	case "DECIMAL", "NUMERIC":
		if dec, err := decimal.NewFromString(value); err == nil {
			f, _ := dec.Float64()
			return f
		}
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT",
		"UNSIGNED INT", "UNSIGNED BIGINT":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	case "FLOAT", "DOUBLE":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

func errorJSON(message string) string {
	data, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return `{"error":"internal error"}`
	}
	return string(data)
}
