package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/pkg/llm"
)

// ResponseComposer turns a JSON result set (or error payload) into a short
// natural-language answer, with deterministic fallbacks when the completion
// service fails.
type ResponseComposer struct {
	client llm.Client
}

func NewResponseComposer(client llm.Client) *ResponseComposer {
	return &ResponseComposer{client: client}
}

// Compose never fails: every path produces an answer string.
func (c *ResponseComposer) Compose(ctx context.Context, question string, resultJSON string) string {
	var payload interface{}
	if err := json.Unmarshal([]byte(resultJSON), &payload); err != nil {
		payload = map[string]interface{}{"error": "Error procesando resultado"}
	}

	// Error payloads become an apology, not a prompt.
	if obj, ok := payload.(map[string]interface{}); ok {
		if errText, found := obj["error"]; found {
			return fmt.Sprintf(constants.ErrorAnswerTemplate, fmt.Sprintf("%v", errText))
		}
	}

	if isEmptyPayload(payload) {
		return constants.NoResultsMessage
	}

	truncated := false
	if list, ok := payload.([]interface{}); ok && len(list) > constants.MaxResultRowsForLLM {
		payload = list[:constants.MaxResultRowsForLLM]
		truncated = true
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(constants.ErrorAnswerTemplate, err.Error())
	}

	truncationRule := ""
	if truncated {
		truncationRule = constants.ResponseTruncationRule
	}

	prompt := fmt.Sprintf(constants.ResponseGenerationPrompt, question, string(data), truncationRule)

	response, err := c.client.Complete(ctx, prompt)
	if err != nil {
		log.Printf("ResponseComposer -> Compose -> Error del LLM: %v, usando respuesta directa", err)
		return fallbackAnswer(payload, string(data))
	}

	answer := stripReasoningMarkup(response)
	for _, phrase := range constants.UnwantedPhrases {
		answer = strings.TrimSpace(strings.ReplaceAll(answer, phrase, ""))
	}

	if answer == "" {
		return fallbackAnswer(payload, string(data))
	}

	return answer
}

// fallbackAnswer reports the element count for sequences with correct
// singular/plural phrasing, or the stringified payload otherwise.
func fallbackAnswer(payload interface{}, rendered string) string {
	if list, ok := payload.([]interface{}); ok {
		count := len(list)
		if count == 1 {
			return fmt.Sprintf(constants.FallbackCountSingular, count)
		}
		return fmt.Sprintf(constants.FallbackCountPlural, count)
	}
	return rendered
}

func isEmptyPayload(payload interface{}) bool {
	switch v := payload.(type) {
	case nil:
		return true
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	case string:
		return v == ""
	default:
		return false
	}
}
