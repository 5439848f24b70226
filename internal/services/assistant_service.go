package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/internal/utils"
	"github.com/capitanfeeder/BotDespensa/pkg/dbmanager"
)

// AssistantService is the upstream boundary consumed by the HTTP layer.
// ProcessQuestion never fails: every error surfaces as an answer string.
type AssistantService interface {
	ProcessQuestion(ctx context.Context, question string) string
	ListTables(ctx context.Context) []string
	GetDatabaseStructure(ctx context.Context) (dbmanager.DatabaseSchema, error)
	CacheStats() dbmanager.CacheStats
	ClearCache()
	TestQuery(ctx context.Context, table, question string) (TestQueryResult, error)
}

// AssistantConfig carries the pipeline knobs resolved at startup.
type AssistantConfig struct {
	// Scope selects single-table or whole-schema query synthesis.
	Scope             string
	SampleRowLimit    int
	MinQuestionLength int
	MaxQuestionLength int
}

// TestQueryResult is the outcome of the direct table probe used by the
// debug endpoint.
type TestQueryResult struct {
	Table          string               `json:"table"`
	Question       string               `json:"question"`
	QueryGenerated string               `json:"query_generated"`
	Result         string               `json:"result"`
	TableStructure dbmanager.TableSchema `json:"table_structure"`
}

type assistantService struct {
	fetcher     *dbmanager.SchemaFetcher
	executor    *dbmanager.QueryExecutor
	cache       *dbmanager.SchemaCache
	selector    TableSelector
	synthesizer *QuerySynthesizer
	composer    *ResponseComposer
	config      AssistantConfig
}

// NewAssistantService wires the pipeline from its explicitly constructed
// collaborators.
func NewAssistantService(
	fetcher *dbmanager.SchemaFetcher,
	executor *dbmanager.QueryExecutor,
	cache *dbmanager.SchemaCache,
	selector TableSelector,
	synthesizer *QuerySynthesizer,
	composer *ResponseComposer,
	config AssistantConfig,
) AssistantService {
	if config.Scope == "" {
		config.Scope = constants.ScopeTable
	}
	if config.SampleRowLimit <= 0 {
		config.SampleRowLimit = constants.SampleRowLimit
	}
	if config.MinQuestionLength <= 0 {
		config.MinQuestionLength = constants.MinQuestionLength
	}
	if config.MaxQuestionLength <= 0 {
		config.MaxQuestionLength = constants.MaxQuestionLength
	}
	return &assistantService{
		fetcher:     fetcher,
		executor:    executor,
		cache:       cache,
		selector:    selector,
		synthesizer: synthesizer,
		composer:    composer,
		config:      config,
	}
}

// ProcessQuestion runs the full pipeline: validate → select table → fetch
// schema → fetch sample (non-fatal) → synthesize → execute → compose.
func (s *assistantService) ProcessQuestion(ctx context.Context, question string) (answer string) {
	requestID := uuid.NewString()

	// The pipeline never propagates a raw failure to its caller.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("AssistantService -> ProcessQuestion -> [%s] Pánico recuperado: %v", requestID, r)
			answer = fmt.Sprintf(constants.ProcessErrorTemplate, fmt.Sprintf("%v", r))
		}
	}()

	// Input validation happens before any table selection or LLM call.
	if err := utils.ValidateTextInput(question, s.config.MaxQuestionLength, s.config.MinQuestionLength); err != nil {
		return fmt.Sprintf(constants.ProcessErrorTemplate, err.Error())
	}

	log.Printf("AssistantService -> ProcessQuestion -> [%s] Procesando pregunta: %s", requestID, utils.SanitizeLogData(question))

	schema, err := s.fetcher.FetchSchema(ctx)
	if err != nil {
		log.Printf("AssistantService -> ProcessQuestion -> [%s] Error: %v", requestID, err)
		return fmt.Sprintf(constants.ProcessErrorTemplate, err.Error())
	}

	tableName, err := s.selector.SelectTable(ctx, question, schema)
	if err != nil {
		log.Printf("AssistantService -> ProcessQuestion -> [%s] Error: %v", requestID, err)
		return fmt.Sprintf(constants.ProcessErrorTemplate, err.Error())
	}
	log.Printf("AssistantService -> ProcessQuestion -> [%s] Tabla detectada: %s", requestID, tableName)

	tables, err := s.tablesInScope(ctx, schema, tableName)
	if err != nil {
		log.Printf("AssistantService -> ProcessQuestion -> [%s] Error: %v", requestID, err)
		return fmt.Sprintf(constants.ProcessErrorTemplate, err.Error())
	}

	// Sampling is best effort; synthesis proceeds without it.
	samples := make(map[string]dbmanager.TableSample)
	if sample, err := s.fetcher.FetchTableSample(ctx, tableName, s.config.SampleRowLimit); err != nil {
		log.Printf("AssistantService -> ProcessQuestion -> [%s] No se pudo obtener muestra: %v", requestID, err)
	} else {
		samples[tableName] = sample
	}

	query, err := s.synthesizer.Synthesize(ctx, question, tables, samples)
	if err != nil {
		log.Printf("AssistantService -> ProcessQuestion -> [%s] Error: %v", requestID, err)
		return fmt.Sprintf(constants.ProcessErrorTemplate, err.Error())
	}

	result := s.executor.Execute(ctx, query, tableName)

	return s.composer.Compose(ctx, question, result)
}

// tablesInScope resolves the schema context handed to the synthesizer:
// the selected table alone, or every table for whole-schema synthesis.
func (s *assistantService) tablesInScope(ctx context.Context, schema dbmanager.DatabaseSchema, selected string) ([]dbmanager.TableSchema, error) {
	if s.config.Scope == constants.ScopeSchema {
		tables := make([]dbmanager.TableSchema, 0, len(schema.TableNames))
		for _, name := range schema.TableNames {
			tables = append(tables, schema.Tables[name])
		}
		return tables, nil
	}

	table, err := s.fetcher.FetchTableSchema(ctx, selected)
	if err != nil {
		return nil, err
	}
	return []dbmanager.TableSchema{table}, nil
}

// ListTables exposes the live table enumeration; empty on connection
// failure.
func (s *assistantService) ListTables(ctx context.Context) []string {
	return s.fetcher.ListTables(ctx)
}

// GetDatabaseStructure exposes the cached whole-database schema.
func (s *assistantService) GetDatabaseStructure(ctx context.Context) (dbmanager.DatabaseSchema, error) {
	return s.fetcher.FetchSchema(ctx)
}

func (s *assistantService) CacheStats() dbmanager.CacheStats {
	return s.cache.Stats()
}

func (s *assistantService) ClearCache() {
	s.cache.InvalidateAll()
}

// TestQuery runs synthesis and execution directly against one table,
// bypassing table selection. Debug use only.
func (s *assistantService) TestQuery(ctx context.Context, table, question string) (TestQueryResult, error) {
	tableSchema, err := s.fetcher.FetchTableSchema(ctx, table)
	if err != nil {
		return TestQueryResult{}, err
	}

	samples := make(map[string]dbmanager.TableSample)
	if sample, err := s.fetcher.FetchTableSample(ctx, table, s.config.SampleRowLimit); err != nil {
		log.Printf("AssistantService -> TestQuery -> No se pudo obtener muestra: %v", err)
	} else {
		samples[table] = sample
	}

	query, err := s.synthesizer.Synthesize(ctx, question, []dbmanager.TableSchema{tableSchema}, samples)
	if err != nil {
		return TestQueryResult{}, err
	}

	result := s.executor.Execute(ctx, query, table)

	return TestQueryResult{
		Table:          table,
		Question:       question,
		QueryGenerated: query,
		Result:         result,
		TableStructure: tableSchema,
	}, nil
}
