package dbmanager

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/capitanfeeder/BotDespensa/internal/constants"
	"github.com/capitanfeeder/BotDespensa/internal/utils"
)

// SchemaFetcher introspects the live MySQL database and populates the
// schema cache. All metadata reads go through the cache; expired entries
// are refreshed lazily.
type SchemaFetcher struct {
	db    DBExecutor
	cache *SchemaCache
}

// NewSchemaFetcher creates a fetcher over the given executor and cache.
func NewSchemaFetcher(db DBExecutor, cache *SchemaCache) *SchemaFetcher {
	return &SchemaFetcher{db: db, cache: cache}
}

// ListTables returns every table name in enumeration order. On connection
// failure it logs a warning and returns an empty list, never an error.
func (f *SchemaFetcher) ListTables(ctx context.Context) []string {
	tables, err := f.fetchTables(ctx)
	if err != nil {
		log.Printf("SchemaFetcher -> ListTables -> Error obteniendo lista de tablas: %v", err)
		return []string{}
	}
	return tables
}

// FetchSchema returns the whole-database schema, cached under "db_info".
// Tables that fail introspection individually are skipped with a warning so
// the snapshot stays consistent with a single capture point.
func (f *SchemaFetcher) FetchSchema(ctx context.Context) (DatabaseSchema, error) {
	value, err := f.cache.GetOrRefresh(cacheKeyDBInfo, func() (interface{}, error) {
		log.Printf("SchemaFetcher -> FetchSchema -> Actualizando información de estructura de BD...")

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tables, err := f.fetchTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tables: %v", err)
		}
		log.Printf("SchemaFetcher -> FetchSchema -> Tablas encontradas: %d", len(tables))

		schema := DatabaseSchema{
			Tables:     make(map[string]TableSchema),
			TableNames: make([]string, 0, len(tables)),
			CapturedAt: time.Now(),
		}

		for _, table := range tables {
			columns, err := f.fetchColumns(ctx, table)
			if err != nil {
				log.Printf("SchemaFetcher -> FetchSchema -> Error obteniendo info de tabla %s: %v", table, err)
				continue
			}
			schema.Tables[table] = TableSchema{Name: table, Columns: columns}
			schema.TableNames = append(schema.TableNames, table)
			log.Printf("SchemaFetcher -> FetchSchema -> %s: %d columnas", table, len(columns))
		}

		return schema, nil
	})
	if err != nil {
		return DatabaseSchema{}, err
	}

	return value.(DatabaseSchema), nil
}

// FetchTableSchema returns one table's schema, cached per table. A table
// absent from the live enumeration fails with a TableNotFoundError whose
// message lists the valid tables.
func (f *SchemaFetcher) FetchTableSchema(ctx context.Context, tableName string) (TableSchema, error) {
	if err := utils.ValidateTableName(tableName); err != nil {
		return TableSchema{}, err
	}

	value, err := f.cache.GetOrRefresh(tableName, func() (interface{}, error) {
		log.Printf("SchemaFetcher -> FetchTableSchema -> Obteniendo info para tabla: '%s'", tableName)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		existing, err := f.fetchTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tables: %v", err)
		}

		if !containsTable(existing, tableName) {
			return nil, &TableNotFoundError{Table: tableName, AvailableTables: existing}
		}

		columns, err := f.fetchColumns(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch columns for table %s: %v", tableName, err)
		}

		log.Printf("SchemaFetcher -> FetchTableSchema -> Info de tabla '%s' cargada (%d columnas)", tableName, len(columns))
		return TableSchema{Name: tableName, Columns: columns}, nil
	})
	if err != nil {
		return TableSchema{}, err
	}

	return value.(TableSchema), nil
}

// FetchTableSample runs a bounded SELECT * and collects up to
// MaxSampleValues distinct stringified non-null values per column. Cached
// per table; the scan stops per column once enough uniques are found.
func (f *SchemaFetcher) FetchTableSample(ctx context.Context, tableName string, limit int) (TableSample, error) {
	if err := utils.ValidateTableName(tableName); err != nil {
		return TableSample{}, err
	}

	value, err := f.cache.GetOrRefresh(tableName+sampleKeySuffix, func() (interface{}, error) {
		log.Printf("SchemaFetcher -> FetchTableSample -> Obteniendo muestra para tabla: '%s'", tableName)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		existing, err := f.fetchTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tables: %v", err)
		}
		if !containsTable(existing, tableName) {
			return nil, &TableNotFoundError{Table: tableName, AvailableTables: existing}
		}

		columns, err := f.fetchColumns(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch columns for table %s: %v", tableName, err)
		}

		var rows []map[string]interface{}
		query := fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", tableName, limit)
		if err := f.db.QueryRows(query, &rows); err != nil {
			return nil, fmt.Errorf("failed to fetch sample for table %s: %v", tableName, err)
		}
		log.Printf("SchemaFetcher -> FetchTableSample -> Obtenidas %d filas de muestra", len(rows))

		sample := TableSample{Table: tableName, Columns: make(map[string][]string)}
		for _, column := range columns {
			seen := make(map[string]bool)
			values := make([]string, 0, constants.MaxSampleValues)
			for _, row := range rows {
				raw, ok := row[column.Name]
				if !ok || raw == nil {
					continue
				}
				str := stringifyValue(raw)
				if !seen[str] {
					seen[str] = true
					values = append(values, str)
				}
				if len(values) >= constants.MaxSampleValues {
					break
				}
			}
			sample.Columns[column.Name] = values
		}

		log.Printf("SchemaFetcher -> FetchTableSample -> Muestra de tabla '%s' cargada en caché", tableName)
		return sample, nil
	})
	if err != nil {
		return TableSample{}, err
	}

	return value.(TableSample), nil
}

// fetchTables enumerates base tables in deterministic order.
func (f *SchemaFetcher) fetchTables(_ context.Context) ([]string, error) {
	var tables []string
	query := `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_schema = DATABASE()
        AND table_type = 'BASE TABLE'
        ORDER BY table_name;
    `
	if err := f.db.Query(query, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// fetchColumns retrieves name and rendered type for every column of a
// table, in ordinal position order.
func (f *SchemaFetcher) fetchColumns(_ context.Context, table string) ([]ColumnInfo, error) {
	var rows []map[string]interface{}
	query := `
        SELECT column_name, column_type
        FROM information_schema.columns
        WHERE table_schema = DATABASE()
        AND table_name = ?
        ORDER BY ordinal_position;
    `
	if err := f.db.QueryRows(query, &rows, table); err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, row := range rows {
		name := extractString(row, "column_name", "COLUMN_NAME")
		colType := extractString(row, "column_type", "COLUMN_TYPE")
		if name == "" {
			continue
		}
		columns = append(columns, ColumnInfo{Name: name, Type: colType})
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns found for table %s", table)
	}

	return columns, nil
}

// extractString pulls a string value out of a generic row, handling the
// []byte values the MySQL driver produces and column-name case differences.
func extractString(row map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if raw, ok := row[key]; ok && raw != nil {
			switch v := raw.(type) {
			case string:
				return v
			case []byte:
				return string(v)
			default:
				return fmt.Sprintf("%v", v)
			}
		}
	}
	return ""
}

func stringifyValue(raw interface{}) string {
	switch v := raw.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func containsTable(tables []string, name string) bool {
	for _, t := range tables {
		if t == name {
			return true
		}
	}
	return false
}
