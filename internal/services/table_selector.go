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

// TableSelector picks the most relevant table for a question. Both
// strategies are deterministic given the same schema and, where applicable,
// the same completion text.
type TableSelector interface {
	SelectTable(ctx context.Context, question string, schema dbmanager.DatabaseSchema) (string, error)
}

// KeywordRule maps a keyword found in the question to a target table.
// Rules are ordered: the first match whose table exists wins.
type KeywordRule struct {
	Keyword string
	Table   string
}

// DefaultKeywordRules covers the despensa schema.
var DefaultKeywordRules = []KeywordRule{
	{Keyword: "producto", Table: "productos"},
	{Keyword: "marca", Table: "marcas"},
	{Keyword: "categoría", Table: "categorias"},
	{Keyword: "categoria", Table: "categorias"},
	{Keyword: "cliente", Table: "clientes"},
	{Keyword: "venta", Table: "ventas"},
	{Keyword: "proveedor", Table: "proveedores"},
}

// HeuristicTableSelector matches question keywords against a fixed rule
// table, no LLM call involved.
type HeuristicTableSelector struct {
	rules []KeywordRule
}

// NewHeuristicTableSelector creates a selector with the given rules; nil
// falls back to DefaultKeywordRules.
func NewHeuristicTableSelector(rules []KeywordRule) *HeuristicTableSelector {
	if rules == nil {
		rules = DefaultKeywordRules
	}
	return &HeuristicTableSelector{rules: rules}
}

func (s *HeuristicTableSelector) SelectTable(_ context.Context, question string, schema dbmanager.DatabaseSchema) (string, error) {
	if len(schema.TableNames) == 0 {
		return "", fmt.Errorf("no se pudo obtener información de la base de datos")
	}

	lowered := strings.ToLower(question)
	for _, rule := range s.rules {
		if strings.Contains(lowered, rule.Keyword) {
			if _, exists := schema.Tables[rule.Table]; exists {
				log.Printf("HeuristicTableSelector -> SelectTable -> Tabla detectada: %s", rule.Table)
				return rule.Table, nil
			}
		}
	}

	first := schema.TableNames[0]
	log.Printf("HeuristicTableSelector -> SelectTable -> No se detectó tabla clara, usando: %s", first)
	return first, nil
}

// LLMTableSelector asks the completion service to name the relevant table
// given the full database structure.
type LLMTableSelector struct {
	client llm.Client
}

func NewLLMTableSelector(client llm.Client) *LLMTableSelector {
	return &LLMTableSelector{client: client}
}

func (s *LLMTableSelector) SelectTable(ctx context.Context, question string, schema dbmanager.DatabaseSchema) (string, error) {
	if len(schema.TableNames) == 0 {
		return "", fmt.Errorf("no se pudo obtener información de la base de datos")
	}

	// One table needs no classification.
	if len(schema.TableNames) == 1 {
		only := schema.TableNames[0]
		log.Printf("LLMTableSelector -> SelectTable -> Solo hay una tabla: %s", only)
		return only, nil
	}

	var descriptions []string
	for _, tableName := range schema.TableNames {
		table := schema.Tables[tableName]
		descriptions = append(descriptions, fmt.Sprintf("- %s: columnas(%s)", tableName, strings.Join(table.ColumnNames(), ", ")))
	}

	prompt := fmt.Sprintf(constants.TableDetectionPrompt, question, strings.Join(descriptions, "\n"))

	first := schema.TableNames[0]

	response, err := s.client.Complete(ctx, prompt)
	if err != nil {
		// LLM failure never propagates from selection; fall back.
		log.Printf("LLMTableSelector -> SelectTable -> Error detectando tabla: %v, usando: %s", err, first)
		return first, nil
	}

	reply := cleanTableReply(response)

	if _, exists := schema.Tables[reply]; exists {
		log.Printf("LLMTableSelector -> SelectTable -> Tabla detectada: %s", reply)
		return reply, nil
	}

	replyLower := strings.ToLower(reply)
	for _, tableName := range schema.TableNames {
		if strings.ToLower(tableName) == replyLower {
			log.Printf("LLMTableSelector -> SelectTable -> Tabla detectada: %s", tableName)
			return tableName, nil
		}
	}

	log.Printf("LLMTableSelector -> SelectTable -> No se detectó tabla clara, usando: %s", first)
	return first, nil
}

// cleanTableReply strips reasoning markup, quoting and punctuation from the
// model's table-name reply.
func cleanTableReply(response string) string {
	reply := stripReasoningMarkup(response)
	replacer := strings.NewReplacer(`"`, "", "'", "", "`", "", ".", "", ":", "")
	return strings.TrimSpace(replacer.Replace(reply))
}
