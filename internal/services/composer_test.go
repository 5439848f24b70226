package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeAsksModelWithResultData(t *testing.T) {
	client := &fakeClient{replies: []string{"Hay 25 productos en total."}}
	composer := NewResponseComposer(client)

	answer := composer.Compose(context.Background(), "¿Cuántos productos hay?", `[{"total":25}]`)

	assert.Equal(t, "Hay 25 productos en total.", answer)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "¿Cuántos productos hay?")
	assert.Contains(t, client.prompts[0], `[{"total":25}]`)
}

func TestComposeErrorPayloadBecomesApology(t *testing.T) {
	client := &fakeClient{}
	composer := NewResponseComposer(client)

	answer := composer.Compose(context.Background(), "borra todo", `{"error":"Disculpa, no tengo permisos para hacer eso."}`)

	assert.Equal(t, "Lo siento, hubo un error: Disculpa, no tengo permisos para hacer eso.", answer)
	assert.Empty(t, client.prompts, "error payloads must not reach the model")
}

func TestComposeInvalidJSONBecomesApology(t *testing.T) {
	composer := NewResponseComposer(&fakeClient{})

	answer := composer.Compose(context.Background(), "¿Cuántos productos hay?", "esto no es json")

	assert.Equal(t, "Lo siento, hubo un error: Error procesando resultado", answer)
}

func TestComposeEmptyResults(t *testing.T) {
	composer := NewResponseComposer(&fakeClient{})

	for _, resultJSON := range []string{"[]", "{}", "null", `""`} {
		answer := composer.Compose(context.Background(), "¿Hay stock de caviar?", resultJSON)
		assert.Equal(t, "No encontré resultados para tu consulta. ¿Quieres que busque algo diferente?", answer, resultJSON)
	}
}

func TestComposeTruncatesLargeResultSets(t *testing.T) {
	rows := make([]map[string]int, 60)
	for i := range rows {
		rows[i] = map[string]int{"n": i}
	}
	data, err := json.Marshal(rows)
	require.NoError(t, err)

	client := &fakeClient{replies: []string{"Acá van los primeros 50 resultados de un total mayor."}}
	composer := NewResponseComposer(client)

	answer := composer.Compose(context.Background(), "listame las ventas", string(data))

	assert.Equal(t, "Acá van los primeros 50 resultados de un total mayor.", answer)
	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "solo se muestran los primeros 50")
	assert.Contains(t, prompt, `{"n":49}`)
	assert.NotContains(t, prompt, `{"n":50}`)
}

func TestComposeStripsUnwantedPhrases(t *testing.T) {
	client := &fakeClient{replies: []string{"Hay 25 productos en total. ¡Espero que esto te sea útil!"}}
	composer := NewResponseComposer(client)

	answer := composer.Compose(context.Background(), "¿Cuántos productos hay?", `[{"total":25}]`)

	assert.Equal(t, "Hay 25 productos en total.", answer)
}

func TestComposeStripsReasoningMarkup(t *testing.T) {
	client := &fakeClient{replies: []string{"<think>el total es 25</think>Hay 25 productos."}}
	composer := NewResponseComposer(client)

	answer := composer.Compose(context.Background(), "¿Cuántos productos hay?", `[{"total":25}]`)

	assert.Equal(t, "Hay 25 productos.", answer)
}

func TestComposeFallbackCountsOnModelFailure(t *testing.T) {
	composer := NewResponseComposer(&fakeClient{err: errors.New("timeout")})

	answer := composer.Compose(context.Background(), "¿Qué productos hay?", `[{"nombre":"Arroz"}]`)
	assert.Equal(t, "Encontré 1 resultado.", answer)

	answer = composer.Compose(context.Background(), "¿Qué productos hay?", `[{"nombre":"Arroz"},{"nombre":"Fideos"},{"nombre":"Yerba"}]`)
	assert.Equal(t, "Encontré 3 resultados.", answer)
}

func TestComposeFallbackRendersNonListPayload(t *testing.T) {
	composer := NewResponseComposer(&fakeClient{err: errors.New("timeout")})

	answer := composer.Compose(context.Background(), "¿Cuántos productos hay?", `{"total":25}`)
	assert.Equal(t, `{"total":25}`, answer)
}

func TestComposeEmptyCompletionFallsBack(t *testing.T) {
	composer := NewResponseComposer(&fakeClient{replies: []string{"   "}})

	answer := composer.Compose(context.Background(), "¿Qué productos hay?", `[{"nombre":"Arroz"},{"nombre":"Fideos"}]`)
	assert.Equal(t, "Encontré 2 resultados.", answer)
}

func TestComposeFallbackHandlesManyRows(t *testing.T) {
	var rows []string
	for i := 0; i < 55; i++ {
		rows = append(rows, fmt.Sprintf(`{"n":%d}`, i))
	}
	resultJSON := "[" + strings.Join(rows, ",") + "]"

	composer := NewResponseComposer(&fakeClient{err: errors.New("timeout")})

	// The fallback counts the truncated payload handed to the model.
	answer := composer.Compose(context.Background(), "listame las ventas", resultJSON)
	assert.Equal(t, "Encontré 50 resultados.", answer)
}
