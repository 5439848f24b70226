package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
)

type Environment struct {
	// Server configs
	IsDocker          bool
	Port              string
	Environment       string
	CorsAllowedOrigin string

	// Database configs (all required)
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	// Pipeline configs
	TableSelector    string
	SynthesizerScope string
	SampleRowLimit   int
	MaxCacheSize     int
	CacheExpiryHours int

	// LLM configs
	DefaultLLMClient string

	OpenAIAPIKey              string
	OpenAIModel               string
	OpenAIMaxCompletionTokens int
	OpenAITemperature         float64

	GeminiAPIKey              string
	GeminiModel               string
	GeminiMaxCompletionTokens int
	GeminiTemperature         float64

	OllamaBaseURL             string
	OllamaModel               string
	OllamaMaxCompletionTokens int
	OllamaTemperature         float64
}

var Env Environment

// LoadEnv loads environment variables from cred.env if present and
// validates required variables. Missing database credentials are fatal: the
// process must not start without them.
func LoadEnv() error {
	// Check if running in Docker
	Env.IsDocker = os.Getenv("IS_DOCKER") == "true"

	// Load cred.env file only if not running in Docker
	if !Env.IsDocker {
		if err := godotenv.Load("cred.env"); err != nil {
			fmt.Printf("Warning: cred.env file not found: %v\n", err)
		}
	}

	// Server configs
	Env.Port = getEnvWithDefault("APP_PORT", "8000")
	Env.Environment = getEnvWithDefault("ENVIRONMENT", "DEVELOPMENT")
	Env.CorsAllowedOrigin = getEnvWithDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	// Database configs
	Env.DBHost = os.Getenv("HOST")
	Env.DBPort = os.Getenv("PORT")
	Env.DBName = os.Getenv("DATABASE")
	Env.DBUser = os.Getenv("USER")
	Env.DBPassword = os.Getenv("PASSWORD")

	// Pipeline configs
	Env.TableSelector = getEnvWithDefault("TABLE_SELECTOR", constants.SelectorLLM)
	Env.SynthesizerScope = getEnvWithDefault("SYNTHESIZER_SCOPE", constants.ScopeTable)
	Env.SampleRowLimit = getIntEnvWithDefault("SAMPLE_ROW_LIMIT", constants.SampleRowLimit)
	Env.MaxCacheSize = getIntEnvWithDefault("MAX_CACHE_SIZE", constants.MaxCacheSize)
	Env.CacheExpiryHours = getIntEnvWithDefault("CACHE_EXPIRY_HOURS", int(constants.CacheExpiry/time.Hour))

	// LLM configs
	Env.DefaultLLMClient = getEnvWithDefault("DEFAULT_LLM_CLIENT", constants.Ollama)

	// OpenAI configs
	Env.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	Env.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", constants.OpenAIModel)
	Env.OpenAIMaxCompletionTokens = getIntEnvWithDefault("OPENAI_MAX_COMPLETION_TOKENS", constants.MaxCompletionTokens)
	Env.OpenAITemperature = getFloatEnvWithDefault("OPENAI_TEMPERATURE", constants.OpenAITemperature)

	// Gemini configs
	Env.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	Env.GeminiModel = getEnvWithDefault("GEMINI_MODEL", constants.GeminiModel)
	Env.GeminiMaxCompletionTokens = getIntEnvWithDefault("GEMINI_MAX_COMPLETION_TOKENS", constants.MaxCompletionTokens)
	Env.GeminiTemperature = getFloatEnvWithDefault("GEMINI_TEMPERATURE", constants.GeminiTemperature)

	// Ollama configs
	Env.OllamaBaseURL = getEnvWithDefault("OLLAMA_BASE_URL", constants.OllamaBaseURL)
	Env.OllamaModel = getEnvWithDefault("OLLAMA_MODEL", constants.OllamaModel)
	Env.OllamaMaxCompletionTokens = getIntEnvWithDefault("OLLAMA_MAX_COMPLETION_TOKENS", constants.MaxCompletionTokens)
	Env.OllamaTemperature = getFloatEnvWithDefault("OLLAMA_TEMPERATURE", constants.OllamaTemperature)

	return validateConfig()
}

// Helper functions to get environment variables with defaults and validation
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strValue)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %f\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func validateConfig() error {
	required := map[string]string{
		"HOST":     Env.DBHost,
		"PORT":     Env.DBPort,
		"DATABASE": Env.DBName,
		"USER":     Env.DBUser,
		"PASSWORD": Env.DBPassword,
	}

	var missing []string
	for _, key := range []string{"HOST", "PORT", "DATABASE", "USER", "PASSWORD"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("faltan variables de entorno de base de datos: %s", strings.Join(missing, ", "))
	}

	if Env.TableSelector != constants.SelectorHeuristic && Env.TableSelector != constants.SelectorLLM {
		return fmt.Errorf("TABLE_SELECTOR must be %q or %q, got: %s", constants.SelectorHeuristic, constants.SelectorLLM, Env.TableSelector)
	}

	if Env.SynthesizerScope != constants.ScopeTable && Env.SynthesizerScope != constants.ScopeSchema {
		return fmt.Errorf("SYNTHESIZER_SCOPE must be %q or %q, got: %s", constants.ScopeTable, constants.ScopeSchema, Env.SynthesizerScope)
	}

	switch Env.DefaultLLMClient {
	case constants.OpenAI, constants.Gemini, constants.Ollama:
	default:
		return fmt.Errorf("unsupported DEFAULT_LLM_CLIENT: %s", Env.DefaultLLMClient)
	}

	return nil
}
