package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
)

// ValidationError marks caller-supplied input as invalid. The HTTP layer
// maps it to a 400 instead of a 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// dangerousPatterns are textual checks, not a SQL parser. Conservative on
// purpose: false positives are acceptable, false negatives are not. The
// executing credential should additionally be restricted to read-only
// grants at the database level.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\b(DELETE|DROP|ALTER|TRUNCATE|INSERT|UPDATE|CREATE|RENAME|REVOKE|GRANT)\b`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`(?s)/\*.*?\*/`),
	regexp.MustCompile(`(?is)\b(EXEC|EXECUTE)\b`),
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// ValidateTableName checks that a table name is safe to interpolate into an
// introspection statement.
func ValidateTableName(tableName string) error {
	if tableName == "" {
		return NewValidationError("el nombre de tabla no puede estar vacío")
	}

	// MySQL identifier limit
	if len(tableName) > 64 {
		return NewValidationError("el nombre de tabla es demasiado largo")
	}

	if !tableNamePattern.MatchString(tableName) {
		return NewValidationError("el nombre de tabla contiene caracteres inválidos")
	}

	return nil
}

// ValidateSQLQuery rejects statements containing mutating keywords, comment
// markers or procedure execution.
func ValidateSQLQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return NewValidationError("la consulta SQL no puede estar vacía")
	}

	if len(query) > constants.MaxQueryLength {
		return NewValidationError("la consulta SQL es demasiado larga (máximo %d caracteres)", constants.MaxQueryLength)
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return NewValidationError("la consulta contiene patrones no permitidos")
		}
	}

	return nil
}

// controlChars are bytes never expected in a legitimate question.
var controlChars = []string{"\x00", "\x08", "\x0b", "\x0c", "\x0e", "\x0f"}

// ValidateTextInput checks length bounds and control characters on free text
// coming from the API boundary. Bounds count runes, not bytes, matching the
// binding rules on the request DTO; accented Spanish must not shrink the
// usable question length.
func ValidateTextInput(text string, maxLength, minLength int) error {
	length := utf8.RuneCountInString(text)
	if length < minLength {
		return NewValidationError("el texto debe tener al menos %d caracteres", minLength)
	}

	if length > maxLength {
		return NewValidationError("el texto no puede exceder %d caracteres", maxLength)
	}

	for _, char := range controlChars {
		if strings.Contains(text, char) {
			return NewValidationError("el texto contiene caracteres de control no permitidos")
		}
	}

	return nil
}

var logControlPattern = regexp.MustCompile(`[\x00-\x08\x0b-\x0c\x0e-\x1f\x7f]`)

// SanitizeLogData strips control characters and newlines from a string
// before it reaches a log line, preventing log injection.
func SanitizeLogData(data string) string {
	sanitized := logControlPattern.ReplaceAllString(data, "")
	sanitized = strings.ReplaceAll(sanitized, "\n", " ")
	sanitized = strings.ReplaceAll(sanitized, "\r", " ")
	return sanitized
}
