// Package config loads worker settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

type TemporalConfig struct {
	HostPort  string `yaml:"host_port"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	ReplyTo  string `yaml:"reply_to"`
}

type Config struct {
	Environment string         `yaml:"environment"`
	ServiceName string         `yaml:"service_name"`
	LogLevel    string         `yaml:"log_level"`
	Temporal    TemporalConfig `yaml:"temporal"`
	DatabaseURL string         `yaml:"database_url"`
	// OrdersEmail is the operator address used when shop settings have none
	OrdersEmail string     `yaml:"orders_email"`
	SMTP        SMTPConfig `yaml:"smtp"`
	FontsDir    string     `yaml:"fonts_dir"`
	MetricsAddr string     `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		Environment: "development",
		ServiceName: "order-notify",
		LogLevel:    "info",
		Temporal: TemporalConfig{
			HostPort:  "localhost:7233",
			Namespace: "default",
			TaskQueue: "order-task-queue",
		},
		SMTP: SMTPConfig{
			Host: "smtp-relay.brevo.com",
			Port: 587,
			From: "Orders <orders@localhost>",
		},
		FontsDir: "assets/fonts",
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads CONFIG_FILE (if set), then .env, then environment variables
func Load() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Temporal.HostPort = getEnv("TEMPORAL_HOST", cfg.Temporal.HostPort)
	cfg.Temporal.Namespace = getEnv("TEMPORAL_NAMESPACE", cfg.Temporal.Namespace)
	cfg.Temporal.TaskQueue = getEnv("ORDER_TASK_QUEUE", cfg.Temporal.TaskQueue)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.OrdersEmail = getEnv("ORDERS_EMAIL", cfg.OrdersEmail)
	cfg.SMTP.Host = getEnv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Username = getEnv("SMTP_USER", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnv("SMTP_PASS", cfg.SMTP.Password)
	cfg.SMTP.From = getEnv("EMAIL_FROM", cfg.SMTP.From)
	cfg.SMTP.ReplyTo = getEnv("EMAIL_REPLY_TO", cfg.SMTP.ReplyTo)
	cfg.FontsDir = getEnv("FONTS_DIR", cfg.FontsDir)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", cfg.MetricsAddr)

	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	return nil
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Temporal.HostPort == "" {
		c.Temporal.HostPort = defaults.Temporal.HostPort
	}
	if c.Temporal.Namespace == "" {
		c.Temporal.Namespace = defaults.Temporal.Namespace
	}
	if c.Temporal.TaskQueue == "" {
		c.Temporal.TaskQueue = defaults.Temporal.TaskQueue
	}
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = defaults.SMTP.Port
	}
	if c.SMTP.ReplyTo == "" {
		c.SMTP.ReplyTo = c.SMTP.From
	}
	if c.FontsDir == "" {
		c.FontsDir = defaults.FontsDir
	}
	c.OrdersEmail = strings.TrimSpace(c.OrdersEmail)
	return c
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
