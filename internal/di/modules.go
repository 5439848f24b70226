package di

import (
	"log"
	"time"

	"go.uber.org/dig"

	"github.com/capitanfeeder/BotDespensa/config"
	"github.com/capitanfeeder/BotDespensa/internal/apis/handlers"
	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/internal/services"
	"github.com/capitanfeeder/BotDespensa/pkg/dbmanager"
	"github.com/capitanfeeder/BotDespensa/pkg/llm"
)

var DiContainer *dig.Container

// Initialize builds the container. The cache and connection pool used to be
// module-level singletons in an earlier design; they are now explicitly
// constructed here with a lifecycle tied to application startup/shutdown.
func Initialize() {
	DiContainer = dig.New()

	// Database manager (connection pool)
	manager, err := dbmanager.NewManager(dbmanager.ConnectionConfig{
		Host:     config.Env.DBHost,
		Port:     config.Env.DBPort,
		Database: config.Env.DBName,
		Username: config.Env.DBUser,
		Password: config.Env.DBPassword,
	})
	if err != nil {
		log.Fatalf("Failed to create database manager: %v", err)
	}

	if err := DiContainer.Provide(func() *dbmanager.Manager { return manager }); err != nil {
		log.Fatalf("Failed to provide database manager: %v", err)
	}

	// Schema cache
	if err := DiContainer.Provide(func() *dbmanager.SchemaCache {
		return dbmanager.NewSchemaCache(
			config.Env.MaxCacheSize,
			time.Duration(config.Env.CacheExpiryHours)*time.Hour,
		)
	}); err != nil {
		log.Fatalf("Failed to provide schema cache: %v", err)
	}

	// Schema fetcher and query executor
	if err := DiContainer.Provide(func(m *dbmanager.Manager, cache *dbmanager.SchemaCache) *dbmanager.SchemaFetcher {
		return dbmanager.NewSchemaFetcher(m, cache)
	}); err != nil {
		log.Fatalf("Failed to provide schema fetcher: %v", err)
	}

	if err := DiContainer.Provide(func(m *dbmanager.Manager) *dbmanager.QueryExecutor {
		return dbmanager.NewQueryExecutor(m)
	}); err != nil {
		log.Fatalf("Failed to provide query executor: %v", err)
	}

	// LLM manager with the configured default client
	if err := DiContainer.Provide(func() *llm.Manager {
		manager := llm.NewManager()

		switch config.Env.DefaultLLMClient {
		case constants.OpenAI:
			err := manager.RegisterClient(constants.OpenAI, llm.Config{
				Provider:            constants.OpenAI,
				Model:               config.Env.OpenAIModel,
				APIKey:              config.Env.OpenAIAPIKey,
				MaxCompletionTokens: config.Env.OpenAIMaxCompletionTokens,
				Temperature:         config.Env.OpenAITemperature,
			})
			if err != nil {
				log.Fatalf("Failed to register OpenAI client: %v", err)
			}
		case constants.Gemini:
			err := manager.RegisterClient(constants.Gemini, llm.Config{
				Provider:            constants.Gemini,
				Model:               config.Env.GeminiModel,
				APIKey:              config.Env.GeminiAPIKey,
				MaxCompletionTokens: config.Env.GeminiMaxCompletionTokens,
				Temperature:         config.Env.GeminiTemperature,
			})
			if err != nil {
				log.Fatalf("Failed to register Gemini client: %v", err)
			}
		case constants.Ollama:
			err := manager.RegisterClient(constants.Ollama, llm.Config{
				Provider:            constants.Ollama,
				Model:               config.Env.OllamaModel,
				BaseURL:             config.Env.OllamaBaseURL,
				MaxCompletionTokens: config.Env.OllamaMaxCompletionTokens,
				Temperature:         config.Env.OllamaTemperature,
			})
			if err != nil {
				log.Fatalf("Failed to register Ollama client: %v", err)
			}
		}
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide LLM manager: %v", err)
	}

	// Assistant service: one configurable pipeline, selector strategy and
	// synthesizer scope resolved from config.
	if err := DiContainer.Provide(func(
		fetcher *dbmanager.SchemaFetcher,
		executor *dbmanager.QueryExecutor,
		cache *dbmanager.SchemaCache,
		llmManager *llm.Manager,
	) services.AssistantService {
		llmClient, err := llmManager.GetClient(config.Env.DefaultLLMClient)
		if err != nil {
			log.Fatalf("Failed to get default LLM client: %v", err)
		}

		var selector services.TableSelector
		switch config.Env.TableSelector {
		case constants.SelectorHeuristic:
			selector = services.NewHeuristicTableSelector(nil)
		default:
			selector = services.NewLLMTableSelector(llmClient)
		}

		return services.NewAssistantService(
			fetcher,
			executor,
			cache,
			selector,
			services.NewQuerySynthesizer(llmClient),
			services.NewResponseComposer(llmClient),
			services.AssistantConfig{
				Scope:          config.Env.SynthesizerScope,
				SampleRowLimit: config.Env.SampleRowLimit,
			},
		)
	}); err != nil {
		log.Fatalf("Failed to provide assistant service: %v", err)
	}

	// Assistant handler
	if err := DiContainer.Provide(func(assistant services.AssistantService) *handlers.AssistantHandler {
		return handlers.NewAssistantHandler(assistant)
	}); err != nil {
		log.Fatalf("Failed to provide assistant handler: %v", err)
	}
}

// GetAssistantHandler retrieves the AssistantHandler from the DI container
func GetAssistantHandler() (*handlers.AssistantHandler, error) {
	var handler *handlers.AssistantHandler
	err := DiContainer.Invoke(func(h *handlers.AssistantHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

// GetDBManager retrieves the database manager, used for shutdown cleanup.
func GetDBManager() (*dbmanager.Manager, error) {
	var manager *dbmanager.Manager
	err := DiContainer.Invoke(func(m *dbmanager.Manager) {
		manager = m
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}
