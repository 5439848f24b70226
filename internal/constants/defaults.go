package constants

import "time"

// LLM providers
const (
	OpenAI = "openai"
	Gemini = "gemini"
	Ollama = "ollama"
)

// Table selector strategies
const (
	SelectorHeuristic = "heuristic"
	SelectorLLM       = "llm"
)

// Query synthesizer scopes
const (
	ScopeTable  = "table"
	ScopeSchema = "schema"
)

// Schema cache defaults
const (
	MaxCacheSize = 100
	CacheExpiry  = time.Hour
)

// Pipeline limits
const (
	MinQuestionLength   = 5
	MaxQuestionLength   = 500
	MaxQueryLength      = 10000
	DefaultRowLimit     = 1000
	SampleRowLimit      = 50
	MaxSampleValues     = 10
	PromptSampleValues  = 5
	MaxResultRowsForLLM = 50
)

// Default models per provider
const (
	OpenAIModel         = "gpt-4o-mini"
	OpenAITemperature   = 0.3
	GeminiModel         = "gemini-2.0-flash"
	GeminiTemperature   = 0.3
	OllamaModel         = "gemma3:1b"
	OllamaTemperature   = 0.3
	OllamaBaseURL       = "http://localhost:11434/v1"
	MaxCompletionTokens = 1024
)
