package dbmanager

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tablesQueryPattern  = "SELECT table_name"
	columnsQueryPattern = "SELECT column_name, column_type"
)

func newTestFetcher(t *testing.T) (*SchemaFetcher, sqlmock.Sqlmock) {
	t.Helper()
	manager, mock := newMockManager(t)
	cache := NewSchemaCache(100, time.Hour)
	return NewSchemaFetcher(manager, cache), mock
}

func tableRows(names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"table_name"})
	for _, name := range names {
		rows.AddRow(name)
	}
	return rows
}

func columnRows(pairs ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"column_name", "column_type"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func TestListTables(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("marcas", "productos"))

	tables := fetcher.ListTables(context.Background())
	assert.Equal(t, []string{"marcas", "productos"}, tables)
}

func TestListTablesReturnsEmptyOnFailure(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnError(errors.New("connection refused"))

	tables := fetcher.ListTables(context.Background())
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}

func TestFetchTableSchema(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("productos"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("productos").
		WillReturnRows(columnRows(
			"id_producto", "int",
			"nombre", "varchar(100)",
			"precio", "decimal(10,2)",
		))

	schema, err := fetcher.FetchTableSchema(context.Background(), "productos")
	require.NoError(t, err)

	assert.Equal(t, "productos", schema.Name)
	assert.Equal(t, []string{"id_producto", "nombre", "precio"}, schema.ColumnNames())
	assert.Equal(t, "decimal(10,2)", schema.Columns[2].Type)
}

func TestFetchTableSchemaIsCached(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("productos"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("productos").
		WillReturnRows(columnRows("id_producto", "int"))

	_, err := fetcher.FetchTableSchema(context.Background(), "productos")
	require.NoError(t, err)

	// Second call must be served from cache without touching the database.
	_, err = fetcher.FetchTableSchema(context.Background(), "productos")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchTableSchemaUnknownTableListsAvailable(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("marcas", "productos"))

	_, err := fetcher.FetchTableSchema(context.Background(), "clientes")
	require.Error(t, err)

	var notFound *TableNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "tabla 'clientes' no existe")
	assert.Contains(t, err.Error(), "marcas, productos")
}

func TestFetchTableSchemaRejectsInvalidName(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	_, err := fetcher.FetchTableSchema(context.Background(), "productos; DROP TABLE x")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchSchemaSkipsFailingTables(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("marcas", "productos"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("marcas").
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("productos").
		WillReturnRows(columnRows("id_producto", "int", "nombre", "varchar(100)"))

	schema, err := fetcher.FetchSchema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"productos"}, schema.TableNames)
	assert.NotContains(t, schema.Tables, "marcas")
	assert.Len(t, schema.Tables["productos"].Columns, 2)
	assert.False(t, schema.CapturedAt.IsZero())
}

func TestFetchSchemaIsCached(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("productos"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("productos").
		WillReturnRows(columnRows("id_producto", "int"))

	first, err := fetcher.FetchSchema(context.Background())
	require.NoError(t, err)

	second, err := fetcher.FetchSchema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.CapturedAt, second.CapturedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchTableSampleCollectsDistinctNonNullValues(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("productos"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("productos").
		WillReturnRows(columnRows("nombre", "varchar(100)", "descripcion", "text"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `productos` LIMIT 4")).
		WillReturnRows(sqlmock.NewRows([]string{"nombre", "descripcion"}).
			AddRow("Arroz", nil).
			AddRow("Fideos", "Paquete 500g").
			AddRow("Arroz", nil).
			AddRow("Yerba", "Paquete 1kg"))

	sample, err := fetcher.FetchTableSample(context.Background(), "productos", 4)
	require.NoError(t, err)

	assert.Equal(t, "productos", sample.Table)
	assert.Equal(t, []string{"Arroz", "Fideos", "Yerba"}, sample.Columns["nombre"])
	assert.Equal(t, []string{"Paquete 500g", "Paquete 1kg"}, sample.Columns["descripcion"])
}

func TestFetchTableSampleCapsValuesPerColumn(t *testing.T) {
	fetcher, mock := newTestFetcher(t)

	rows := sqlmock.NewRows([]string{"nombre"})
	names := []string{
		"Arroz", "Fideos", "Yerba", "Azucar", "Harina", "Sal",
		"Aceite", "Vinagre", "Lentejas", "Polenta", "Cacao", "Miel",
	}
	for _, name := range names {
		rows.AddRow(name)
	}

	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(tableRows("productos"))
	mock.ExpectQuery(columnsQueryPattern).WithArgs("productos").
		WillReturnRows(columnRows("nombre", "varchar(100)"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `productos` LIMIT 12")).
		WillReturnRows(rows)

	sample, err := fetcher.FetchTableSample(context.Background(), "productos", 12)
	require.NoError(t, err)

	assert.Len(t, sample.Columns["nombre"], 10)
	assert.Equal(t, names[:10], sample.Columns["nombre"])
}
