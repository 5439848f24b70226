package dbmanager

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
)

// Query optimizer: normalizes LLM-produced SQL text before execution. Every
// step is idempotent; running the pipeline on its own output changes
// nothing.

var (
	markdownFenceOpenPattern  = regexp.MustCompile("```\\w*\\n?")
	markdownFenceClosePattern = regexp.MustCompile("\\n?```")
	htmlCommentPattern        = regexp.MustCompile(`(?s)<!--.*?-->`)
	limitClausePattern        = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	strayLimitSemiPattern     = regexp.MustCompile(`(?i);\s*LIMIT\s+(\d+)`)
	repeatedSemiPattern       = regexp.MustCompile(`;+`)
)

// FixMarkdownArtifacts removes markdown code fences and HTML comment
// markers that models sometimes wrap around generated SQL.
func FixMarkdownArtifacts(query string) string {
	query = markdownFenceOpenPattern.ReplaceAllString(query, "")
	query = markdownFenceClosePattern.ReplaceAllString(query, "")
	query = htmlCommentPattern.ReplaceAllString(query, "")
	return strings.Join(strings.Fields(query), " ")
}

// fixSQLSyntaxIssues repairs common statement terminator mistakes: a stray
// ";" placed before a LIMIT clause, repeated terminators and a trailing one.
func fixSQLSyntaxIssues(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	query = strayLimitSemiPattern.ReplaceAllString(query, " LIMIT $1;")
	query = repeatedSemiPattern.ReplaceAllString(query, ";")
	query = strings.TrimRight(query, ";")
	return query
}

// addErrorResilience appends a default row cap when the statement carries no
// LIMIT clause.
func addErrorResilience(query string) string {
	query = strings.TrimSpace(query)
	if !limitClausePattern.MatchString(query) {
		query += fmt.Sprintf(" LIMIT %d", constants.DefaultRowLimit)
	}
	return query
}

// ValidateAndEnhance runs the optimizer pipeline in fixed order and returns
// the transformed statement plus a warning per step that changed the text.
func ValidateAndEnhance(query string) (string, []string) {
	var warnings []string
	enhanced := query

	cleaned := FixMarkdownArtifacts(enhanced)
	if cleaned != enhanced {
		warnings = append(warnings, "Se removieron artefactos de markdown de la consulta")
		enhanced = cleaned
	}

	resilient := addErrorResilience(enhanced)
	if resilient != enhanced {
		warnings = append(warnings, "Se agregaron elementos de resistencia a errores")
		enhanced = resilient
	}

	syntaxFixed := fixSQLSyntaxIssues(enhanced)
	if syntaxFixed != enhanced {
		warnings = append(warnings, "Se corrigieron problemas de sintaxis SQL")
		enhanced = syntaxFixed
	}

	return enhanced, warnings
}

// DiagnoseQueryError classifies a failed execution into one of the fixed
// diagnostic categories with remediation hints.
func DiagnoseQueryError(errorMessage, query string) Diagnosis {
	diagnosis := Diagnosis{
		ErrorType:   ErrorTypeUnknown,
		Suggestions: []string{},
	}

	errorLower := strings.ToLower(errorMessage)

	switch {
	case strings.Contains(errorMessage, "```sql") || strings.Contains(errorMessage, "```") ||
		strings.Contains(query, "```"):
		diagnosis.ErrorType = ErrorTypeMarkdownArtifacts
		diagnosis.Description = "La consulta contiene artefactos de markdown"
		diagnosis.Suggestions = []string{
			"Remover los bloques de código markdown (```)",
			"Limpiar la consulta antes de ejecutar",
		}
		diagnosis.AutoFixAvailable = true

	case strings.Contains(errorLower, "unknown column"):
		diagnosis.ErrorType = ErrorTypeUnknownColumn
		diagnosis.Description = "Columna no existe o nombre incorrecto"
		diagnosis.Suggestions = []string{
			"Verificar el nombre de la columna",
			"Revisar mayúsculas/minúsculas si es relevante",
			"Consultar la estructura de la tabla",
		}

	case strings.Contains(errorLower, "syntax error") ||
		strings.Contains(errorLower, "you have an error in your sql syntax"):
		diagnosis.ErrorType = ErrorTypeSyntaxError
		diagnosis.Description = "Error de sintaxis SQL"
		diagnosis.Suggestions = []string{
			"Verificar paréntesis balanceados",
			"Revisar comillas y caracteres especiales",
			"Validar estructura de la consulta",
		}

	case strings.Contains(errorLower, "table") &&
		(strings.Contains(errorLower, "doesn't exist") || strings.Contains(errorLower, "not found")):
		diagnosis.ErrorType = ErrorTypeTableNotFound
		diagnosis.Description = "La tabla especificada no existe"
		diagnosis.Suggestions = []string{
			"Verificar el nombre de la tabla",
			"Confirmar que la tabla existe en la base de datos",
			"Revisar permisos de acceso",
		}
	}

	return diagnosis
}
