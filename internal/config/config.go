package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the back-office service
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Reports  ReportsConfig  `yaml:"reports"`
	Log      LogConfig      `yaml:"log"`

	// databaseURL overrides the assembled URL when DATABASE_URL is set
	databaseURL string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Exchange string `yaml:"exchange"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type AuthConfig struct {
	SessionTTL             time.Duration `yaml:"session_ttl"`
	BcryptCost             int           `yaml:"bcrypt_cost"`
	BootstrapAdminUser     string        `yaml:"bootstrap_admin_user"`
	BootstrapAdminPassword string        `yaml:"bootstrap_admin_password"`
}

type ReportsConfig struct {
	Timezone      string `yaml:"timezone"`
	DefaultStatus string `yaml:"default_status"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used for any key missing from the file
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "water",
			Database: "water",
			SSLMode:  "disable",
			MaxConns: 25,
			MinConns: 5,
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			Exchange: "water_orders",
		},
		HTTP: HTTPConfig{
			Port:           3333,
			RequestTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:         12 * time.Hour,
			BcryptCost:         10,
			BootstrapAdminUser: "admin",
		},
		Reports: ReportsConfig{
			Timezone:      "UTC",
			DefaultStatus: "DELIVERED",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file and applies environment overrides.
// A missing file is not an error: defaults and the environment are used.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.databaseURL = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT value: %w", err)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"); v != "" {
		c.Auth.BootstrapAdminPassword = v
	}
	return nil
}

// Validate rejects values the service cannot run with
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost out of range: %d", c.Auth.BcryptCost)
	}
	if _, err := time.LoadLocation(c.Reports.Timezone); err != nil {
		return fmt.Errorf("reports.timezone: %w", err)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.Exchange == "" {
		return fmt.Errorf("rabbitmq.exchange is required when rabbitmq is enabled")
	}
	return nil
}

// Location returns the timezone used to interpret report date bounds
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	if c.databaseURL != "" {
		return c.databaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
