// Package database configures and opens the Postgres connection pool
// backing the read-only member/embedding projection that the semantic
// search engine queries.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	sharederrors "github.com/communityconnect/nlquery/pkg/shared/errors"
)

// Config describes the Postgres connection pool.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns the baseline pool tuning for a local/dev member
// store.
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            5432,
		User:            "nlquery_reader",
		Database:        "communityconnect",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// LoadFromEnv overlays DB_* environment variables onto config. Values
// that fail to parse (e.g. a non-numeric DB_PORT) are ignored and the
// existing value is kept.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("DB_SSL_MODE"); v != "" {
		c.SSLMode = v
	}
}

// Validate checks that config describes a usable connection pool.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("invalid database configuration: database host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database configuration: database port must be between 1 and 65535")
	}
	if c.User == "" {
		return fmt.Errorf("invalid database configuration: database user is required")
	}
	if c.Database == "" {
		return fmt.Errorf("invalid database configuration: database name is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("invalid database configuration: max open connections must be greater than 0")
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("invalid database configuration: max idle connections must be non-negative")
	}
	return nil
}

// ConnectionString builds a libpq-style connection string, omitting the
// password entirely when unset so logs never show "password=" with a
// blank value.
func (c *Config) ConnectionString() string {
	s := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s", c.Host, c.Port, c.User, c.Database, c.SSLMode)
	if c.Password != "" {
		s += fmt.Sprintf(" password=%s", c.Password)
	}
	return s
}

// Connect validates config and opens a pooled *sql.DB using the lib/pq
// driver.
func Connect(config *Config, logger *logrus.Logger) (*sql.DB, error) {
	if err := config.Validate(); err != nil {
		return nil, sharederrors.FailedTo("open database connection", err)
	}

	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, sharederrors.DatabaseError("open connection", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	logger.WithFields(logrus.Fields{
		"host":     config.Host,
		"port":     config.Port,
		"database": config.Database,
	}).Info("database connection pool configured")

	return db, nil
}
