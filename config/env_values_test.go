package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
)

func setRequiredDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOST", "localhost")
	t.Setenv("PORT", "3306")
	t.Setenv("DATABASE", "despensa")
	t.Setenv("USER", "despensa_ro")
	t.Setenv("PASSWORD", "secret")
}

func TestLoadEnvMissingDatabaseCredentials(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("HOST", "")
	t.Setenv("PASSWORD", "")

	err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "faltan variables de entorno de base de datos")
	assert.Contains(t, err.Error(), "HOST")
	assert.Contains(t, err.Error(), "PASSWORD")
}

func TestLoadEnvOllamaDefaults(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("OLLAMA_MAX_COMPLETION_TOKENS", "")
	t.Setenv("OLLAMA_TEMPERATURE", "")

	require.NoError(t, LoadEnv())

	assert.Equal(t, constants.OllamaBaseURL, Env.OllamaBaseURL)
	assert.Equal(t, constants.OllamaModel, Env.OllamaModel)
	assert.Equal(t, constants.MaxCompletionTokens, Env.OllamaMaxCompletionTokens)
	assert.Equal(t, constants.OllamaTemperature, Env.OllamaTemperature)
}

func TestLoadEnvOllamaOverrides(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("OLLAMA_MAX_COMPLETION_TOKENS", "2048")
	t.Setenv("OLLAMA_TEMPERATURE", "0.7")

	require.NoError(t, LoadEnv())

	// Ollama tuning is independent from the OpenAI settings.
	assert.Equal(t, 2048, Env.OllamaMaxCompletionTokens)
	assert.Equal(t, 0.7, Env.OllamaTemperature)
	assert.Equal(t, constants.MaxCompletionTokens, Env.OpenAIMaxCompletionTokens)
	assert.Equal(t, constants.OpenAITemperature, Env.OpenAITemperature)
}

func TestLoadEnvRejectsInvalidSelector(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("TABLE_SELECTOR", "aleatorio")

	err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TABLE_SELECTOR")
}
