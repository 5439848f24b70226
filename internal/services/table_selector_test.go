package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitanfeeder/BotDespensa/pkg/dbmanager"
)

func despensaSchema(tables ...string) dbmanager.DatabaseSchema {
	schema := dbmanager.DatabaseSchema{
		Tables:     make(map[string]dbmanager.TableSchema),
		TableNames: tables,
	}
	for _, name := range tables {
		schema.Tables[name] = dbmanager.TableSchema{
			Name: name,
			Columns: []dbmanager.ColumnInfo{
				{Name: "id_" + name, Type: "int"},
				{Name: "nombre", Type: "varchar(100)"},
			},
		}
	}
	return schema
}

func TestHeuristicSelectorMatchesKeyword(t *testing.T) {
	selector := NewHeuristicTableSelector(nil)
	schema := despensaSchema("categorias", "marcas", "productos")

	table, err := selector.SelectTable(context.Background(), "¿Qué marcas de gaseosa tenés?", schema)
	require.NoError(t, err)
	assert.Equal(t, "marcas", table)
}

func TestHeuristicSelectorMatchIsCaseInsensitive(t *testing.T) {
	selector := NewHeuristicTableSelector(nil)
	schema := despensaSchema("marcas", "productos")

	table, err := selector.SelectTable(context.Background(), "Listame los PRODUCTOS disponibles", schema)
	require.NoError(t, err)
	assert.Equal(t, "productos", table)
}

func TestHeuristicSelectorSkipsMissingTables(t *testing.T) {
	selector := NewHeuristicTableSelector(nil)
	// "producto" matches first but the table does not exist in this schema.
	schema := despensaSchema("marcas", "ventas")

	table, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", schema)
	require.NoError(t, err)
	assert.Equal(t, "marcas", table)
}

func TestHeuristicSelectorFallsBackToFirstTable(t *testing.T) {
	selector := NewHeuristicTableSelector(nil)
	schema := despensaSchema("categorias", "marcas")

	table, err := selector.SelectTable(context.Background(), "¿Qué tenés para ofrecerme hoy?", schema)
	require.NoError(t, err)
	assert.Equal(t, "categorias", table)
}

func TestHeuristicSelectorEmptySchemaFails(t *testing.T) {
	selector := NewHeuristicTableSelector(nil)

	_, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema())
	assert.Error(t, err)
}

func TestLLMSelectorSingleTableSkipsCompletion(t *testing.T) {
	client := &fakeClient{}
	selector := NewLLMTableSelector(client)

	table, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema("productos"))
	require.NoError(t, err)
	assert.Equal(t, "productos", table)
	assert.Empty(t, client.prompts, "single-table schemas must not cost a completion")
}

func TestLLMSelectorCleansReply(t *testing.T) {
	cases := []string{
		"productos",
		"'productos'.",
		"`productos`",
		"\"productos\"",
		"<think>el usuario pregunta por stock</think>productos",
		"  productos  ",
	}

	for _, reply := range cases {
		client := &fakeClient{replies: []string{reply}}
		selector := NewLLMTableSelector(client)

		table, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema("marcas", "productos"))
		require.NoError(t, err, reply)
		assert.Equal(t, "productos", table, reply)
	}
}

func TestLLMSelectorMatchesCaseInsensitively(t *testing.T) {
	client := &fakeClient{replies: []string{"PRODUCTOS"}}
	selector := NewLLMTableSelector(client)

	table, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema("marcas", "productos"))
	require.NoError(t, err)
	assert.Equal(t, "productos", table)
}

func TestLLMSelectorUnknownReplyFallsBack(t *testing.T) {
	client := &fakeClient{replies: []string{"inventario_general"}}
	selector := NewLLMTableSelector(client)

	table, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema("marcas", "productos"))
	require.NoError(t, err)
	assert.Equal(t, "marcas", table)
}

func TestLLMSelectorCompletionErrorFallsBack(t *testing.T) {
	client := &fakeClient{err: errors.New("timeout")}
	selector := NewLLMTableSelector(client)

	table, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema("marcas", "productos"))
	require.NoError(t, err, "selection errors must not propagate")
	assert.Equal(t, "marcas", table)
}

func TestLLMSelectorPromptCarriesStructure(t *testing.T) {
	client := &fakeClient{replies: []string{"productos"}}
	selector := NewLLMTableSelector(client)

	_, err := selector.SelectTable(context.Background(), "¿Cuántos productos hay?", despensaSchema("marcas", "productos"))
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "¿Cuántos productos hay?")
	assert.Contains(t, client.prompts[0], "- marcas: columnas(id_marcas, nombre)")
	assert.Contains(t, client.prompts[0], "- productos: columnas(id_productos, nombre)")
}
