package dbmanager

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectionConfig holds the parameters needed to reach the inventory
// database. All fields are required; validation happens at startup.
type ConnectionConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
}

// DBExecutor is the database surface the introspector and executor depend
// on. Kept as an interface so tests can drive it through sqlmock.
type DBExecutor interface {
	Query(sql string, dest interface{}, values ...interface{}) error
	QueryRows(sql string, dest *[]map[string]interface{}, values ...interface{}) error
	Rows(sql string) (*sql.Rows, error)
}

// Pool sizing: 5 permanent connections plus 10 overflow, recycled hourly.
const (
	poolIdleConns   = 5
	poolMaxConns    = 15
	poolMaxLifetime = time.Hour
)

// Manager owns the GORM handle and its underlying connection pool. It is
// explicitly constructed and injected; there is no package-level singleton.
type Manager struct {
	db *gorm.DB
}

// NewManager opens a pooled MySQL connection and pings it once so a bad
// credential set fails at startup instead of on the first question.
func NewManager(config ConnectionConfig) (*Manager, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true",
		config.Username, config.Password, config.Host, config.Port, config.Database,
	)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		DSN: dsn,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %v", err)
	}

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	sqlDB.SetMaxIdleConns(poolIdleConns)
	sqlDB.SetMaxOpenConns(poolMaxConns)
	sqlDB.SetConnMaxLifetime(poolMaxLifetime)

	log.Printf("Manager -> NewManager -> Connected to %s:%s/%s", config.Host, config.Port, config.Database)

	return &Manager{db: gormDB}, nil
}

// NewManagerWithDB wraps an already-open GORM handle. Used by tests to
// inject a sqlmock-backed connection.
func NewManagerWithDB(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Query executes a statement scanning into a typed destination.
func (m *Manager) Query(sql string, dest interface{}, values ...interface{}) error {
	return m.db.Raw(sql, values...).Scan(dest).Error
}

// QueryRows executes a statement scanning every row into a generic map.
func (m *Manager) QueryRows(sql string, dest *[]map[string]interface{}, values ...interface{}) error {
	return m.db.Raw(sql, values...).Scan(dest).Error
}

// Rows executes a statement and hands back the raw cursor. The caller owns
// closing it on every exit path.
func (m *Manager) Rows(sql string) (*sql.Rows, error) {
	return m.db.Raw(sql).Rows()
}

// Ping checks that the pool can still reach the database.
func (m *Manager) Ping() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %v", err)
	}
	return sqlDB.Ping()
}

// Close releases the pool. Called on application shutdown.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %v", err)
	}
	return nil
}
