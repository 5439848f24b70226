package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the OpenAI chat completion API. With a custom
// BaseURL it also serves any OpenAI-compatible endpoint, which is how a
// local Ollama deployment is reached.
type OpenAIClient struct {
	client              *openai.Client
	provider            string
	model               string
	maxCompletionTokens int
	temperature         float64
}

// NewOpenAIClient creates a client from the given config.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		if config.BaseURL == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		// OpenAI-compatible servers like Ollama ignore the key but the
		// client refuses an empty one.
		apiKey = "ollama"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client:              openai.NewClientWithConfig(clientConfig),
		provider:            config.Provider,
		model:               config.Model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
	}, nil
}

// Complete sends a single-turn prompt and returns the raw completion text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: c.maxCompletionTokens,
		Temperature:         float32(c.temperature),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("OpenAIClient -> Complete -> err: %v", err)
		return "", fmt.Errorf("completion API error: %v", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion service")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            c.provider,
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}
