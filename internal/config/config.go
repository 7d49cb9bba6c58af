package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultSchedulerInterval is used when SCHEDULER_INTERVAL is missing or malformed.
const DefaultSchedulerInterval = time.Minute

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	SMTP      SMTPConfig
	DocsAPI   DocsAPIConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RabbitMQConfig struct {
	URL       string
	Host      string
	Port      string
	User      string
	Password  string
	VHost     string
	QueueName string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
	UseTLS     bool
}

type DocsAPIConfig struct {
	BaseURL string
}

type SchedulerConfig struct {
	Interval time.Duration
}

func Load(logger *zap.Logger) (*Config, error) {
	var missing []string

	get := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	config := &Config{
		Server: ServerConfig{
			Port: get("SERVER_PORT"),
			Host: get("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     get("DB_HOST"),
			Port:     get("DB_PORT"),
			User:     get("DB_USER"),
			Password: get("DB_PASSWORD"),
			DBName:   get("DB_NAME"),
			SSLMode:  get("DB_SSLMODE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:       os.Getenv("RABBITMQ_URL"),
			Host:      get("RABBITMQ_HOST"),
			Port:      get("RABBITMQ_PORT"),
			User:      get("RABBITMQ_USER"),
			Password:  get("RABBITMQ_PASSWORD"),
			VHost:     get("RABBITMQ_VHOST"),
			QueueName: get("RABBITMQ_QUEUE"),
		},
		SMTP: SMTPConfig{
			Host:       get("SMTP_HOST"),
			Username:   get("SMTP_USERNAME"),
			Password:   get("SMTP_PASSWORD"),
			SenderName: os.Getenv("SMTP_SENDER_NAME"),
			UseTLS:     os.Getenv("SMTP_TLS") == "true",
		},
		DocsAPI: DocsAPIConfig{
			BaseURL: get("DOCS_API_URL"),
		},
		Scheduler: SchedulerConfig{
			Interval: ParseInterval(os.Getenv("SCHEDULER_INTERVAL"), logger),
		},
	}

	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		parsed, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", portStr, err)
		}
		smtpPort = parsed
	}
	config.SMTP.Port = smtpPort

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return config, nil
}

// ParseInterval parses the dispatch interval as a Go duration string
// ("30s", "1m", ...). A malformed or non-positive value falls back to
// DefaultSchedulerInterval with a logged warning instead of failing startup.
func ParseInterval(raw string, logger *zap.Logger) time.Duration {
	if raw == "" {
		return DefaultSchedulerInterval
	}

	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		if logger != nil {
			logger.Warn("Invalid scheduler interval configuration, falling back to default",
				zap.String("configured", raw),
				zap.Duration("default", DefaultSchedulerInterval),
			)
		}
		return DefaultSchedulerInterval
	}

	return interval
}

// ConnectionString returns a DSN string for GORM
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// MigrationURL returns a postgres:// URL for golang-migrate
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func (c *RabbitMQConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s%s",
		c.User, c.Password, c.Host, c.Port, c.VHost)
}
