package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	// APIServerConfig is the top-level configuration for the CampusShield
	// API server.
	APIServerConfig struct {
		Server   ServerConfig   `yaml:"server"`
		Database DatabaseConfig `yaml:"database"`
		JWT      JWTConfig      `yaml:"jwt"`
		Auth     AuthConfig     `yaml:"auth"`
		Mail     MailConfig     `yaml:"mail"`
		Notify   NotifyConfig   `yaml:"notify"`
		Limiter  LimiterConfig  `yaml:"limiter"`
		Logger   LoggerConfig   `yaml:"logger"`
		Metrics  MetricsConfig  `yaml:"metrics"`
		Tracing  TracingConfig  `yaml:"tracing"`
	}

	ServerConfig struct {
		Port int `yaml:"port"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (mysql), 5432 (postgres)
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (postgres)
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// AuthConfig holds credential-handling knobs.
	AuthConfig struct {
		BcryptCost int `yaml:"bcrypt_cost"` // 0 means bcrypt.DefaultCost
	}

	// MailConfig configures outbound SMTP delivery. Type "log" writes mail
	// to the application log instead of sending it, for development.
	MailConfig struct {
		Type     string `yaml:"type"` // smtp, log
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	}

	// NotifyConfig configures the notification outbox and the static
	// routing addresses for report escalation.
	NotifyConfig struct {
		OperationsEmail        string            `yaml:"operations_email"`
		RoutingAddresses       map[string]string `yaml:"routing_addresses"` // whom_to_report -> address
		DefaultRoutingAddress  string            `yaml:"default_routing_address"`
		PollInterval           time.Duration     `yaml:"poll_interval"`
		MaxAttempts            int               `yaml:"max_attempts"`
		RetryBackoff           time.Duration     `yaml:"retry_backoff"`
	}

	// LimiterConfig configures the anonymous siren rate limiter.
	LimiterConfig struct {
		Type   string             `yaml:"type"` // memory, redis
		Limit  int                `yaml:"limit"`
		Window time.Duration      `yaml:"window"`
		Redis  LimiterRedisConfig `yaml:"redis"`
	}

	LimiterRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, default is local
		TimeFormat string `yaml:"time_format"` // time format, default "2006-01-02 15:04:05"
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	TracingConfig struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		Endpoint    string  `yaml:"endpoint"` // e.g. localhost:4317 or http://localhost:4318
		Protocol    string  `yaml:"protocol"` // grpc or http
		Insecure    bool    `yaml:"insecure"`
		SamplerRate float64 `yaml:"sampler_rate"` // 0.0~1.0
		Environment string  `yaml:"environment"`
	}
)

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		// Ensure the directory for the SQLite database exists.
		if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
			panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// RouteAddress resolves the escalation address for a report's whom_to_report
// value, falling back to the default routing address.
func (c *NotifyConfig) RouteAddress(whomToReport string) string {
	if addr, ok := c.RoutingAddresses[whomToReport]; ok && addr != "" {
		return addr
	}
	return c.DefaultRoutingAddress
}
