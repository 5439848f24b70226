package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/pkg/dbmanager"
	"github.com/capitanfeeder/BotDespensa/pkg/llm"
)

// GenerationError marks a failed or unusable completion during query
// synthesis. The orchestrator translates it into a user-facing apology.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("error generando consulta: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// QuerySynthesizer asks the completion service for exactly one SQL
// statement answering a question over the given tables.
type QuerySynthesizer struct {
	client llm.Client
}

func NewQuerySynthesizer(client llm.Client) *QuerySynthesizer {
	return &QuerySynthesizer{client: client}
}

// Synthesize builds the generation prompt from the question, the table
// schemas and optional samples, calls the model and post-processes the raw
// completion into a single clean statement. It never returns an empty
// string silently.
func (s *QuerySynthesizer) Synthesize(ctx context.Context, question string, tables []dbmanager.TableSchema, samples map[string]dbmanager.TableSample) (string, error) {
	tableContext := buildTableContext(tables)
	sampleContext := buildSampleContext(tables, samples)

	joinRule := ""
	if len(tables) > 1 {
		joinRule = constants.QueryGenerationJoinRule
	}

	prompt := fmt.Sprintf(constants.QueryGenerationPrompt,
		question, tableContext, sampleContext, joinRule, backtickedColumns(tables))

	response, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	query := stripReasoningMarkup(response)
	query = dbmanager.FixMarkdownArtifacts(query)
	query = stripEnclosingQuotes(strings.TrimSpace(query))
	query = collapseWhitespace(query)

	if query == "" {
		return "", &GenerationError{Err: fmt.Errorf("la consulta generada está vacía")}
	}

	log.Printf("QuerySynthesizer -> Synthesize -> Query generada: %s", query)
	return query, nil
}

// buildTableContext renders every table with its column name/type pairs.
func buildTableContext(tables []dbmanager.TableSchema) string {
	var blocks []string
	for _, table := range tables {
		pairs := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			pairs = append(pairs, fmt.Sprintf("%s (%s)", col.Name, col.Type))
		}
		blocks = append(blocks, fmt.Sprintf("Tabla: %s\nColumnas disponibles:\n%s", table.Name, strings.Join(pairs, ", ")))
	}
	return strings.Join(blocks, "\n\n")
}

// buildSampleContext renders up to PromptSampleValues example values per
// column. Sampling is best effort, so missing samples produce no context.
func buildSampleContext(tables []dbmanager.TableSchema, samples map[string]dbmanager.TableSample) string {
	if len(samples) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, table := range tables {
		sample, ok := samples[table.Name]
		if !ok {
			continue
		}
		header := false
		for _, col := range table.Columns {
			values := sample.Columns[col.Name]
			if len(values) == 0 {
				continue
			}
			if !header {
				sb.WriteString("\nEjemplos de valores en las columnas:\n")
				header = true
			}
			if len(values) > constants.PromptSampleValues {
				values = values[:constants.PromptSampleValues]
			}
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", col.Name, strings.Join(values, ", ")))
		}
	}
	return sb.String()
}

func backtickedColumns(tables []dbmanager.TableSchema) string {
	var quoted []string
	for _, table := range tables {
		for _, col := range table.Columns {
			quoted = append(quoted, fmt.Sprintf("`%s`", col.Name))
		}
	}
	return strings.Join(quoted, ", ")
}
